// Command probe recovers a substitution-cipher map from a remote encryption
// oracle and uses it to decode ciphertext.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose      bool
	apiKey       string
	workspace    string
	configPath   string
	timeout      time.Duration
	progressMode string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "probe",
	Short: "cipherprobe - substitution cipher recovery against an encryption oracle",
	Long: `cipherprobe queries a black-box encryption service one character at a time,
learns the fixed-width substitution it applies for an identity, and decodes
ciphertext produced under that identity.

Run without arguments to start the interactive menu.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(os.Stdin)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config to .probe/config.yaml",
	RunE:  runInit,
}

var mapCmd = &cobra.Command{
	Use:   "map [identity]",
	Short: "Set the identity and build its substitution map",
	Long: `Queries the oracle once per alphabet character under the given identity,
determines the segment length and stores the resulting map.

The identity only becomes active when the build succeeds. Switching to a
different identity clears the matrix data of the previous one.`,
	Args: cobra.ExactArgs(1),
	RunE: runMap,
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Build repetition matrix data for the active identity",
	Long: `Queries the oracle with each alphabet character repeated N times and stores
the raw ciphertexts. The result is cross-checked against the map.`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

var decodeCmd = &cobra.Command{
	Use:   "decode [ciphertext]",
	Short: "Decode ciphertext with the active map",
	Long: `Decodes ciphertext with the map of the active identity. Unknown segments
become '?' and a trailing partial segment is dropped.

Examples:
  probe decode 3F2A9C
  probe decode --file secret.txt
  probe decode --watch secret.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect the active map or matrix",
}

var showMapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the active decryption map as JSON",
	Args:  cobra.NoArgs,
	RunE:  runShowMap,
}

var showMatrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the active matrix data, split into segments",
	Args:  cobra.NoArgs,
	RunE:  runShowMatrix,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached oracle replies",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [identity]",
	Short: "Drop cached replies for one identity, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Oracle API key (or set PROBE_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest .probe or current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.probe/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Timeout for each map or matrix build")
	rootCmd.PersistentFlags().StringVar(&progressMode, "progress", "auto", "Build progress bar: auto, on, off")
	rootCmd.PersistentFlags().Lookup("progress").NoOptDefVal = "on"

	matrixCmd.Flags().IntVarP(&matrixRepeat, "repeat", "n", 0, "Repetitions per character (default: mapping.repeat_count)")

	decodeCmd.Flags().StringVarP(&decodeFile, "file", "f", "", "Read ciphertext from a file")
	decodeCmd.Flags().StringVar(&decodeWatch, "watch", "", "Decode a file again every time it is written")

	showMatrixCmd.Flags().BoolVar(&showRaw, "raw", false, "Show ciphertexts without segment spacing")

	showCmd.AddCommand(showMapCmd)
	showCmd.AddCommand(showMatrixCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
