package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	notesync "notesync/sync"
)

var watch bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize notes with the server",
	Long: `Push local note changes and pull remote ones.
With --watch the background worker keeps syncing until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}

		if watch {
			if !application.Auth.IsSignedIn() {
				slog.Warn("not signed in; the worker will wait for a session")
			}
			repos.Worker.Start()
			fmt.Fprintln(cmd.ErrOrStderr(), "Syncing in the background, press Ctrl+C to stop")
			<-cmd.Context().Done()
			repos.Worker.Stop()
			return nil
		}

		res, err := repos.Notes.Sync(cmd.Context())
		if err != nil {
			return err
		}
		return reportSync(cmd, res)
	},
}

func reportSync(cmd *cobra.Command, res *notesync.Result) error {
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), res)
	}
	if !res.HadChanges() {
		fmt.Fprintln(cmd.OutOrStdout(), "Already up to date")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d, applied %d, deleted %d\n",
		res.Pushed, res.Upserted, res.Deleted)
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep syncing in the background")
}
