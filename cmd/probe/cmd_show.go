package main

import (
	"fmt"

	"cipherprobe/internal/display"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var showRaw bool

// runShowMap prints the active map.
func runShowMap(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return showMap(a)
}

func showMap(a *app) error {
	forward := a.session.Forward()
	if len(forward) == 0 {
		fmt.Println("\nNo decryption map has been generated yet.")
		return nil
	}
	out, err := a.renderer.Map(a.session.Identity(), a.session.SegmentLength(), forward)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// runShowMatrix prints the active matrix data and its cross-check.
func runShowMatrix(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return showMatrix(a, showRaw)
}

func showMatrix(a *app, raw bool) error {
	if a.session.Identity() == "" {
		fmt.Println("\nPlease set an API ID first.")
		return nil
	}
	data := a.session.Matrix()
	if len(data) == 0 {
		fmt.Println("\nNo matrix data has been generated yet for this ID.")
		return nil
	}

	fmt.Print(a.renderer.Matrix(a.session.Identity(), a.session.Alphabet(), data,
		a.session.RepeatCount(), a.session.SegmentLength(), raw))

	mismatches, err := a.session.CrossCheck()
	if err != nil {
		logger.Debug("Cross-check skipped", zap.Error(err))
		return nil
	}
	fmt.Print(a.renderer.CrossCheck(mismatches))
	return nil
}

// runStatus prints the markdown status report.
func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return showStatus(a)
}

func collectStatus(a *app) (display.Status, error) {
	st := display.Status{
		Identity:      a.session.Identity(),
		SegmentLength: a.session.SegmentLength(),
		MappedChars:   len(a.session.Forward()),
		AlphabetSize:  len(a.session.Alphabet()),
		MatrixRows:    len(a.session.Matrix()),
		RepeatCount:   a.session.RepeatCount(),
		DatabasePath:  a.store.Path(),
		CacheEnabled:  a.cfg.Oracle.Cache,
	}

	if mismatches, err := a.session.CrossCheck(); err == nil {
		st.Mismatches = len(mismatches)
	}

	ids, err := a.store.Identities()
	if err != nil {
		return st, err
	}
	for _, id := range ids {
		st.Identities = append(st.Identities, display.IdentityRow{
			Identity:      id.Identity,
			SegmentLength: id.SegmentLength,
			Chars:         id.Chars,
			HasMatrix:     id.HasMatrix,
			CreatedAt:     id.CreatedAt,
		})
	}

	stats, err := a.store.GetStats()
	if err != nil {
		return st, err
	}
	st.CachedReplies = stats["oracle_cache"]
	return st, nil
}

func showStatus(a *app) error {
	st, err := collectStatus(a)
	if err != nil {
		return err
	}
	out, err := a.renderer.Status(st)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// runCacheClear drops cached oracle replies.
func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	identity := ""
	if len(args) == 1 {
		identity = args[0]
	}
	n, err := a.store.ClearCache(identity)
	if err != nil {
		return err
	}
	if identity == "" {
		fmt.Printf("Removed %d cached replies\n", n)
	} else {
		fmt.Printf("Removed %d cached replies for ID %s\n", n, identity)
	}
	return nil
}
