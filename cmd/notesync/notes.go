package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"notesync/models"
)

var (
	noteTitle   string
	noteContent string
	noteColor   string
	noteGeotag  string
	noteGroup   int64
)

var notesCmd = &cobra.Command{
	Use:     "notes",
	Aliases: []string{"note"},
	Short:   "Manage notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}

		var groupID *int64
		if cmd.Flags().Changed("group") {
			groupID = &noteGroup
		}
		notes, err := repos.Notes.List(cmd.Context(), groupID)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(cmd.OutOrStdout(), notes)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CLIENT ID\tSERVER ID\tMODIFIED\tTITLE")
		for _, n := range notes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ClientID, serverID(n.ID), formatMillis(n.LastModified), n.Title)
		}
		return w.Flush()
	},
}

var notesShowCmd = &cobra.Command{
	Use:   "show <client-id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		n, err := repos.Notes.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(cmd.OutOrStdout(), n)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n\n%s\n", n.Title, n.Content)
		for _, c := range n.Comments {
			fmt.Fprintf(out, "\n> %s (%s, %s)", c.Text, c.AuthorID, formatMillis(c.CreatedAt))
		}
		if len(n.Comments) > 0 {
			fmt.Fprintln(out)
		}
		return nil
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}

		req := models.CreateNoteRequest{
			Title:   noteTitle,
			Content: noteContent,
			Color:   noteColor,
			Geotag:  noteGeotag,
		}
		req.LineCountHint = strings.Count(req.Content, "\n") + 1
		if cmd.Flags().Changed("group") {
			req.GroupID = &noteGroup
		}

		n, err := repos.Notes.Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		return reportNote(cmd, "Created", n)
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <client-id>",
	Short: "Change a note; only the given flags are updated",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		cur, err := repos.Notes.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		req := models.CreateNoteRequest{
			Title:         cur.Title,
			Content:       cur.Content,
			Color:         cur.Color,
			Geotag:        cur.Geotag,
			GroupID:       cur.GroupID,
			LineCountHint: cur.LineCountHint,
		}
		flags := cmd.Flags()
		if flags.Changed("title") {
			req.Title = noteTitle
		}
		if flags.Changed("content") {
			req.Content = noteContent
			req.LineCountHint = strings.Count(req.Content, "\n") + 1
		}
		if flags.Changed("color") {
			req.Color = noteColor
		}
		if flags.Changed("geotag") {
			req.Geotag = noteGeotag
		}
		if flags.Changed("group") {
			req.GroupID = &noteGroup
			if noteGroup == 0 {
				req.GroupID = nil
			}
		}

		n, err := repos.Notes.Update(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		return reportNote(cmd, "Updated", n)
	},
}

var notesRmCmd = &cobra.Command{
	Use:   "rm <client-id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		if err := repos.Notes.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
		return nil
	},
}

var notesCommentCmd = &cobra.Command{
	Use:   "comment <client-id> <text>",
	Short: "Comment on a synced note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		c, err := repos.Notes.AddComment(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), c)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Comment %d added\n", c.ID)
		return nil
	},
}

func reportNote(cmd *cobra.Command, verb string, n *models.Note) error {
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), n)
	}
	state := "pending sync"
	if n.HasServerID() {
		state = "synced as " + serverID(n.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s note %s (%s)\n", verb, n.ClientID, state)
	return nil
}

func serverID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd, notesShowCmd, notesAddCmd, notesEditCmd, notesRmCmd, notesCommentCmd)

	notesListCmd.Flags().Int64Var(&noteGroup, "group", 0, "Only notes shared with this group")
	for _, c := range []*cobra.Command{notesAddCmd, notesEditCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title")
		c.Flags().StringVarP(&noteContent, "content", "c", "", "Note body")
		c.Flags().StringVar(&noteColor, "color", "", "Color as #RRGGBB or #AARRGGBB")
		c.Flags().StringVar(&noteGeotag, "geotag", "", "Free-form location tag")
		c.Flags().Int64Var(&noteGroup, "group", 0, "Share with a group (0 to unshare)")
	}
}
