package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cipherprobe/internal/cipher"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	decodeFile  string
	decodeWatch string
)

// runDecode decodes an argument, a file, or a watched file.
func runDecode(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case decodeWatch != "":
		// Watching runs until interrupted; --timeout does not apply.
		ctx, stop := signalContext()
		defer stop()
		return watchAndDecode(ctx, a, decodeWatch, os.Stdout)
	case decodeFile != "":
		ciphertext, err := readCiphertext(decodeFile)
		if err != nil {
			return err
		}
		return decodeTo(os.Stdout, a, ciphertext)
	case len(args) == 1:
		return decodeTo(os.Stdout, a, strings.TrimSpace(args[0]))
	default:
		return errors.New("nothing to decode: pass ciphertext, --file or --watch")
	}
}

func readCiphertext(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read ciphertext: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// decodeTo decodes ciphertext with the active map and writes the report to w.
func decodeTo(w io.Writer, a *app, ciphertext string) error {
	if ciphertext == "" {
		fmt.Fprintln(w, "No encrypted string entered.")
		return nil
	}

	res, err := a.session.Decode(ciphertext)
	if err != nil {
		switch {
		case errors.Is(err, cipher.ErrNoIdentity):
			fmt.Fprintln(w, "\nPlease set an API ID first.")
		case errors.Is(err, cipher.ErrNoMap):
			fmt.Fprintln(w, "\nError: no decryption map available. Build it first.")
		}
		return err
	}

	logger.Debug("Decoded ciphertext",
		zap.String("identity", a.session.Identity()),
		zap.Int("unknown", res.Unknown),
		zap.Int("warnings", len(res.Warnings)))
	fmt.Fprint(w, a.renderer.Decode(a.session.Identity(), ciphertext, a.session.SegmentLength(), res))
	return nil
}

// watchAndDecode decodes path once, then again after every write, until ctx
// is done. The parent directory is watched so editors that replace the file
// are followed.
func watchAndDecode(ctx context.Context, a *app, path string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	decodeFileTo := func() {
		ciphertext, err := readCiphertext(abs)
		if err != nil {
			fmt.Fprintf(w, "Warning: %v\n", err)
			return
		}
		if err := decodeTo(w, a, ciphertext); err != nil {
			fmt.Fprintf(w, "Decode failed: %v\n", err)
		}
	}

	if _, err := os.Stat(abs); err == nil {
		decodeFileTo()
	}
	fmt.Fprintf(w, "Watching %s for changes (Ctrl+C to stop)\n", path)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "Stopped watching.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("Ciphertext file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				decodeFileTo()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))
		}
	}
}
