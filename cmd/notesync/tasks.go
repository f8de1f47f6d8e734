package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"notesync/database"
	"notesync/models"
	"notesync/services"
)

var (
	taskDescription string
	taskPriority    string
	taskDue         string
	taskRemind      bool
	taskGroup       int64
	taskAssignee    string
	taskRefresh     bool
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks (cached unless --refresh)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}

		filter := database.TaskFilter{AssigneeID: taskAssignee}
		if cmd.Flags().Changed("group") {
			filter.GroupID = &taskGroup
		}

		var tasks []models.Task
		if taskRefresh {
			tasks, err = repos.Tasks.Refresh(cmd.Context(), filter.GroupID)
			if err == nil && filter.AssigneeID != "" {
				tasks, err = repos.Tasks.List(cmd.Context(), filter)
			}
		} else {
			tasks, err = repos.Tasks.List(cmd.Context(), filter)
		}
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(cmd.OutOrStdout(), tasks)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
		for _, t := range tasks {
			due := "-"
			if t.Deadline != nil {
				due = formatMillis(t.Deadline.At)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
		}
		return w.Flush()
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}

		req := models.TaskRequest{
			Title:       args[0],
			Description: taskDescription,
			Priority:    models.Priority(taskPriority),
			AssigneeID:  taskAssignee,
		}
		if cmd.Flags().Changed("group") {
			req.GroupID = &taskGroup
		}
		if taskDue != "" {
			at, err := parseDue(taskDue)
			if err != nil {
				return err
			}
			req.Deadline = &models.Deadline{At: at.UnixMilli(), RemindByTime: taskRemind}
		}

		t, err := repos.Tasks.Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		return reportTask(cmd, t)
	},
}

var tasksStatusCmd = &cobra.Command{
	Use:   "status <id> <ToDo|InProgress|Done>",
	Short: "Change a task's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], models.TaskStatus(args[1]))
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], models.TaskStatusDone)
	},
}

var tasksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		if err := repos.Tasks.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
		return nil
	},
}

var tasksCommentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Comment on a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		c, err := repos.Tasks.AddComment(cmd.Context(), id, args[1])
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

func setStatus(cmd *cobra.Command, rawID string, status models.TaskStatus) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	repos, err := repositories(cmd)
	if err != nil {
		return err
	}
	t, err := repos.Tasks.SetStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	return reportTask(cmd, t)
}

func reportTask(cmd *cobra.Command, t *models.Task) error {
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d [%s, %s] %s\n", t.ID, t.Status, t.Priority, t.Title)
	if t.WantsTimeReminder() {
		fmt.Fprintf(cmd.OutOrStdout(), "Reminder %s at %s\n", services.ReminderID(t.ID), formatMillis(t.Deadline.At))
	}
	return nil
}

// parseDue accepts RFC 3339, "2006-01-02 15:04" in local time, or a
// duration from now such as "2h".
func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid due time %q", s)
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksStatusCmd, tasksDoneCmd, tasksRmCmd, tasksCommentCmd)

	tasksListCmd.Flags().Int64Var(&taskGroup, "group", 0, "Only tasks of this group")
	tasksListCmd.Flags().StringVar(&taskAssignee, "assignee", "", "Only tasks assigned to this user")
	tasksListCmd.Flags().BoolVar(&taskRefresh, "refresh", false, "Fetch from the server first")

	tasksAddCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "Task description")
	tasksAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", string(models.PriorityMedium), "Low, Medium or High")
	tasksAddCmd.Flags().StringVar(&taskDue, "due", "", "Deadline (RFC 3339, \"2006-01-02 15:04\" or a duration like 2h)")
	tasksAddCmd.Flags().BoolVar(&taskRemind, "remind", false, "Remind at the deadline")
	tasksAddCmd.Flags().Int64Var(&taskGroup, "group", 0, "Share with a group")
	tasksAddCmd.Flags().StringVar(&taskAssignee, "assignee", "", "Assign to a user id")
}
