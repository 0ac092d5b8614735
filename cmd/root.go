// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"embedder/internal/config"
	"embedder/internal/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagPlugin        string
	flagNoFallback    bool
	flagPrefsBackend  string
	flagPrefsPath     string
	flagProvidersFile string
	flagTimeout       string
	flagJSON          bool
	flagDebug         bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "embedder",
	Short: "Resolve media references and render embeddable players",
	Long: `Embedder turns media URLs, filenames or raw ids into provider player ids
and renders sized, parameterised iframe players for them.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlugin, "plugin", "", "Owner prefix of global preferences (default: player)")
	rootCmd.PersistentFlags().BoolVar(&flagNoFallback, "no-fallback", false, "Do not treat bare ids as raw provider ids")
	rootCmd.PersistentFlags().StringVar(&flagPrefsBackend, "prefs-backend", "", "Preference store: toml | sqlite")
	rootCmd.PersistentFlags().StringVar(&flagPrefsPath, "prefs", "", "Preference store path")
	rootCmd.PersistentFlags().StringVar(&flagProvidersFile, "providers-file", "", "Extra provider profiles (TOML)")
	rootCmd.PersistentFlags().StringVar(&flagTimeout, "timeout", "", "oEmbed request timeout (default: 30s)")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(oembedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlugin != "" {
		cfg.Plugin = flagPlugin
	}
	if flagNoFallback {
		cfg.Fallback = false
	}
	if flagPrefsBackend != "" {
		cfg.PrefsBackend = flagPrefsBackend
	}
	if flagPrefsPath != "" {
		cfg.PrefsPath = flagPrefsPath
	}
	if flagProvidersFile != "" {
		cfg.ProvidersFile = flagProvidersFile
	}
	if flagTimeout != "" {
		cfg.OEmbedTimeout = flagTimeout
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Render warnings are printed by the commands themselves; the log only
	// carries them in debug mode.
	level := slog.LevelError
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	httputil.UserAgent = "embedder/" + Version

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		slog.Debug(fmt.Sprintf(format, args...))
	}
}
