package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"notesync/app"
	"notesync/config"
	"notesync/config/setup"
	"notesync/services"
)

var (
	verbose bool
	jsonOut bool

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "Offline-first notes and tasks, synced with a notesync server",
	Long: `notesync keeps notes, tasks and groups in a local SQLite store.
Notes are edited offline and reconciled with the server by "notesync sync";
groups and tasks talk to the server and fall back to the local copy offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		} else if config.GetEnv("LOG_LEVEL", "") == "" {
			cfg.LogLevel = "warn"
		}
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		logger := setup.NewLogger(cfg, os.Stderr)
		application, err = app.New(cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// PersistentPostRunE is skipped when a command fails
		if application != nil {
			_ = application.Close()
		}
		fmt.Fprintln(os.Stderr, "Error:", friendly(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

// repositories opens the local store on first use.
func repositories(cmd *cobra.Command) (*app.Repositories, error) {
	return application.Repositories(cmd.Context())
}

func friendly(err error) string {
	if errors.Is(err, services.ErrNotSignedIn) {
		return "not signed in; run \"notesync login\" first"
	}
	return err.Error()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSecret returns the flag value, or reads one line from in.
func readSecret(flagValue, prompt string, in io.Reader, out io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
