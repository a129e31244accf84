package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cipherprobe/internal/cipher"
	"cipherprobe/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matrixRepeat int

// runInit writes a default config unless one exists.
func runInit(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath(ws)
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists at %s\n", path)
		return nil
	}

	cfg := config.DefaultConfig()
	if apiKey != "" {
		cfg.Oracle.APIKey = apiKey
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	logger.Info("Wrote default config", zap.String("path", path))
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

// runMap sets the identity and builds its map.
func runMap(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireOracle(); err != nil {
		return err
	}

	return mapIdentity(ctx, a, args[0])
}

// runMatrix builds matrix data for the active identity.
func runMatrix(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireOracle(); err != nil {
		return err
	}

	if matrixRepeat != 0 {
		if err := a.session.SetRepeatCount(matrixRepeat); err != nil {
			return err
		}
	}
	return buildMatrix(ctx, a)
}

func mapIdentity(ctx context.Context, a *app, identity string) error {
	if identity == "" {
		fmt.Println("API ID cannot be empty.")
		return errors.New("identity cannot be empty")
	}

	prev := a.session.Identity()
	if prev != "" && prev != identity {
		fmt.Println("API ID changes, previous matrix data is cleared if the build succeeds.")
	}

	alphabet := a.session.Alphabet()
	fmt.Printf("\n--- Building decryption map (ID: %s) ---\n", identity)
	fmt.Printf("Encrypting %d unique characters...\n", len(alphabet))

	logger.Info("Building map", zap.String("identity", identity), zap.Int("chars", len(alphabet)))
	res, err := a.buildMap(ctx, identity)
	if err != nil {
		var lenErr *cipher.InconsistentSegmentLengthError
		if errors.As(err, &lenErr) {
			fmt.Printf("\nFATAL: inconsistent encrypted string lengths for ID %q.\n", identity)
			fmt.Printf("Expected length %d, got %d for char %q.\n", lenErr.Expected, lenErr.Got, string(lenErr.Char))
		}
		if prev != "" {
			fmt.Printf("Failed to generate decryption map for ID %s. API ID remains %s.\n", identity, prev)
		} else {
			fmt.Printf("Failed to generate decryption map for ID %s.\n", identity)
		}
		logger.Warn("Map build failed", zap.String("identity", identity), zap.Error(err))
		return err
	}

	fmt.Print(a.renderer.MapBuild(res, len(alphabet)))
	fmt.Printf("API ID set to '%s', segment length is %d.\n", identity, res.SegmentLength)
	return nil
}

func buildMatrix(ctx context.Context, a *app) error {
	identity := a.session.Identity()
	if identity == "" {
		fmt.Println("\nPlease set an API ID first.")
		return cipher.ErrNoIdentity
	}

	alphabet := a.session.Alphabet()
	fmt.Printf("\n--- Generating matrix data (ID: %s) ---\n", identity)

	logger.Info("Building matrix", zap.String("identity", identity))
	res, err := a.buildMatrix(ctx)
	if err != nil {
		fmt.Println("Matrix data generation failed.")
		logger.Warn("Matrix build failed", zap.String("identity", identity), zap.Error(err))
		return err
	}

	fmt.Print(a.renderer.MatrixBuild(res, len(alphabet)))
	mismatches, err := a.session.CrossCheck()
	if err != nil {
		logger.Debug("Cross-check skipped", zap.Error(err))
		return nil
	}
	fmt.Print(a.renderer.CrossCheck(mismatches))
	return nil
}
