// finchat is a terminal client for the financial-literacy chat assistant:
// streamed chat, quizzes, a placement diagnostic, course content, file
// uploads, and profile management, all backed by the remote assistant API.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"finchat/cmd/finchat/chat"
	"finchat/internal/api"
	"finchat/internal/config"
	"finchat/internal/logging"
	"finchat/internal/store"
)

const version = "1.0.0"

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "finchat",
	Short: "finchat - financial-literacy chat assistant",
	Long: `finchat is a terminal client for a financial-literacy assistant.

Run without arguments to start the interactive chat widget. Subcommands
cover quizzes, the placement diagnostic, courses, uploads, and your profile.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive widget has its own UI; skip the zap logger there
		if cmd.Use == "finchat" && cmd.CalledAs() == "finchat" {
			return initWorkspace()
		}

		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return initWorkspace()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive chat widget
		return runInteractiveChat()
	},
}

// initWorkspace resolves the workspace and brings up debug logging.
func initWorkspace() error {
	if workspace == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		workspace = home
	}
	if err := logging.Initialize(workspace); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	return nil
}

// loadClient builds the API client from workspace config.
func loadClient() (*api.Client, *config.Config, error) {
	cfg, err := config.LoadWorkspace(workspace)
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(cfg.API)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// openStore opens the local session store from workspace config.
func openStore(cfg *config.Config) (*store.SessionStore, error) {
	path := cfg.Storage.DatabasePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	return store.NewSessionStore(path)
}

// runInteractiveChat wires the client, store, and config watcher into the
// chat widget.
func runInteractiveChat() error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	sessions, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reflect config edits into the running client without a restart
	watcher, err := config.NewWatcher(workspace, func(updated *config.Config) {
		_ = client.UpdateConfig(updated.API)
	})
	if err == nil {
		if err := watcher.Start(ctx); err == nil {
			defer watcher.Stop()
		}
	}

	return chat.Run(chat.Config{
		Client:  client,
		Store:   sessions,
		Upload:  cfg.Upload,
		Version: version,
	})
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: home)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(diagnosticCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(sessionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
