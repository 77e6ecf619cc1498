package service

import (
	"fmt"
	"io"
	"strconv"

	"yatube/app/models"
	"yatube/app/services"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newGroupCmd() *cobra.Command {
	group := &cobra.Command{
		Use:   "group",
		Short: "Manage community groups",
	}

	var form models.GroupForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services.Services, out io.Writer) error {
				g, err := svc.Groups.Create(&form)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Group %q created at /group/%s/\n", g.Title, g.Slug)
				return nil
			})
		},
	}
	create.Flags().StringVar(&form.Title, "title", "", "group title")
	create.Flags().StringVar(&form.Slug, "slug", "", "URL slug")
	create.Flags().StringVar(&form.Description, "description", "", "group description")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("slug")
	_ = create.MarkFlagRequired("description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services.Services, out io.Writer) error {
				groups, err := svc.Groups.List()
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					fmt.Fprintln(out, "No groups")
					return nil
				}
				table := tablewriter.NewWriter(out)
				table.SetAutoWrapText(false)
				table.SetHeader([]string{"Slug", "Title", "Description"})
				for _, g := range groups {
					table.Append([]string{g.Slug, g.Title, g.Description})
				}
				table.Render()
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts stay, without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services.Services, out io.Writer) error {
				if err := svc.Groups.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Group %s deleted\n", args[0])
				return nil
			})
		},
	}

	group.AddCommand(create, list, remove)
	return group
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var yes bool
	remove := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user with their posts, comments and follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, fmt.Sprintf("Delete user %s and everything they wrote?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
				return errCancelled
			}
			return withServices(cmd, func(svc *services.Services, out io.Writer) error {
				if err := svc.Users.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "User %s deleted\n", args[0])
				return nil
			})
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services.Services, out io.Writer) error {
				users, err := svc.Users.List()
				if err != nil {
					return err
				}
				if len(users) == 0 {
					fmt.Fprintln(out, "No users")
					return nil
				}
				table := tablewriter.NewWriter(out)
				table.SetAutoWrapText(false)
				table.SetHeader([]string{"#", "Username", "Name", "Email", "Joined"})
				for _, u := range users {
					table.Append([]string{
						strconv.Itoa(u.ID),
						u.Username,
						u.FullName(),
						u.Email,
						u.CreatedAt.Format("2006-01-02"),
					})
				}
				table.Render()
				return nil
			})
		},
	}

	user.AddCommand(list, remove)
	return user
}
