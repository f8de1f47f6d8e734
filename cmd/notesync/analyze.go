package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"notesync/models"
	"notesync/services"
)

var (
	analyzeWait     bool
	analyzeInterval time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract tasks from meeting audio or transcripts",
}

var analyzeTranscriptCmd = &cobra.Command{
	Use:   "transcript <file|->",
	Short: "Submit a text transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		job, err := application.Analysis.SubmitTranscript(cmd.Context(), string(text))
		if err != nil {
			return err
		}
		return followJob(cmd, job)
	},
}

var analyzeAudioCmd = &cobra.Command{
	Use:   "audio <file>",
	Short: "Upload a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		job, err := application.Analysis.SubmitAudio(cmd.Context(), args[0], f)
		if err != nil {
			return err
		}
		return followJob(cmd, job)
	},
}

var analyzeStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		job, err := application.Analysis.Poll(cmd.Context(), id)
		if err != nil {
			return err
		}
		return followJob(cmd, job)
	},
}

func followJob(cmd *cobra.Command, job *models.AnalysisJob) error {
	if analyzeWait && !job.Status.Terminal() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for job %d...\n", job.ID)
		done, err := application.Analysis.Wait(cmd.Context(), job.ID, analyzeInterval)
		if done != nil {
			job = done
		}
		if err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), job)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job %d (%s): %s\n", job.ID, job.Type, job.Status)
	if job.Error != "" {
		fmt.Fprintln(out, "Error:", job.Error)
	}
	if job.Status == models.JobStatusSucceeded {
		drafts, err := services.TaskDrafts(job)
		if err != nil {
			return err
		}
		for _, d := range drafts {
			fmt.Fprintf(out, "  [%s] %s\n", d.Priority, d.Title)
		}
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeTranscriptCmd, analyzeAudioCmd, analyzeStatusCmd)
	analyzeCmd.PersistentFlags().BoolVarP(&analyzeWait, "wait", "w", false, "Wait until the job finishes")
	analyzeCmd.PersistentFlags().DurationVar(&analyzeInterval, "interval", 2*time.Second, "Polling interval with --wait")
}
