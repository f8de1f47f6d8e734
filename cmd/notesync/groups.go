package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"notesync/models"
	"notesync/services"
)

var (
	groupDescription string
	groupRole        string
	groupRefresh     bool
)

var groupsCmd = &cobra.Command{
	Use:     "groups",
	Aliases: []string{"group"},
	Short:   "Manage groups and their members",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups (cached unless --refresh)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}

		var groups []models.Group
		if groupRefresh {
			groups, err = repos.Groups.Refresh(cmd.Context())
		} else {
			groups, err = repos.Groups.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(cmd.OutOrStdout(), groups)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tOWNER")
		for _, g := range groups {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", g.ID, g.Name, g.MemberCount, g.OwnerID)
		}
		return w.Flush()
	},
}

var groupsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a group with its members",
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
		g, err := repos.Groups.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return reportGroup(cmd, g)
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := repositories(cmd)
		if err != nil {
			return err
		}
		g, err := repos.Groups.Create(cmd.Context(), models.GroupRequest{Name: args[0], Description: groupDescription})
		if err != nil {
			return err
		}
		return reportGroup(cmd, g)
	},
}

var groupsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a group",
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
		desc := groupDescription
		if !cmd.Flags().Changed("description") {
			cur, err := repos.Groups.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			desc = cur.Description
		}
		g, err := repos.Groups.Update(cmd.Context(), id, models.GroupRequest{Name: args[1], Description: desc})
		if err != nil {
			return err
		}
		return reportGroup(cmd, g)
	},
}

var groupsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, args[0], "Deleted group", func(gs *services.GroupService, id int64) error {
			return gs.Delete(cmd.Context(), id)
		})
	},
}

var groupsLeaveCmd = &cobra.Command{
	Use:   "leave <id>",
	Short: "Leave a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, args[0], "Left group", func(gs *services.GroupService, id int64) error {
			return gs.Leave(cmd.Context(), id)
		})
	},
}

var groupsAddMemberCmd = &cobra.Command{
	Use:   "add-member <id> <user-id>",
	Short: "Add a user to a group",
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
		g, err := repos.Groups.AddMember(cmd.Context(), id, models.AddMemberRequest{UserID: args[1], Role: groupRole})
		if err != nil {
			return err
		}
		return reportGroup(cmd, g)
	},
}

var groupsRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <id> <user-id>",
	Short: "Remove a user from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, args[0], "Removed "+args[1]+" from group", func(gs *services.GroupService, id int64) error {
			return gs.RemoveMember(cmd.Context(), id, args[1])
		})
	},
}

func groupAction(cmd *cobra.Command, rawID, done string, fn func(gs *services.GroupService, id int64) error) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	repos, err := repositories(cmd)
	if err != nil {
		return err
	}
	if err := fn(repos.Groups, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", done, id)
	return nil
}

func reportGroup(cmd *cobra.Command, g *models.Group) error {
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), g)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d  %s (%d members)\n", g.ID, g.Name, g.MemberCount)
	if g.Description != "" {
		fmt.Fprintln(out, g.Description)
	}
	for _, m := range g.Members {
		fmt.Fprintf(out, "  %-8s %s %s\n", m.Role, m.ID, m.Username)
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsListCmd, groupsShowCmd, groupsCreateCmd, groupsRenameCmd,
		groupsRmCmd, groupsLeaveCmd, groupsAddMemberCmd, groupsRemoveMemberCmd)

	groupsListCmd.Flags().BoolVar(&groupRefresh, "refresh", false, "Fetch from the server first")
	groupsCreateCmd.Flags().StringVarP(&groupDescription, "description", "d", "", "Group description")
	groupsRenameCmd.Flags().StringVarP(&groupDescription, "description", "d", "", "Group description")
	groupsAddMemberCmd.Flags().StringVar(&groupRole, "role", models.RoleMember, "Role: owner or member")
}
