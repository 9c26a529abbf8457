package main

import (
	"errors"
	"fmt"

	"tracker/internal/client/notifications"

	"github.com/spf13/cobra"
)

func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"n"},
		Short:   "Read and clear notifications",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the most recent notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.fetchNotifications(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range c.Entries() {
				mark := " "
				if !e.Read {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s  %s  %s: %s\n", mark, e.CreatedAt.Format("2006-01-02 15:04"), e.ID, e.Title, e.Content)
			}
			fmt.Fprintf(w, "%d unread\n", c.Unread())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.fetchNotifications(cmd)
			if err != nil {
				return err
			}
			err = c.MarkRead(cmd.Context(), args[0])
			if errors.Is(err, notifications.ErrNotFound) {
				// older than the first page
				err = a.client().MarkNotificationRead(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", c.Unread())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.fetchNotifications(cmd)
			if err != nil {
				return err
			}
			if err := c.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", c.Unread())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := notifications.New(a.client(), notifications.WithLogger(a.log))
			if err := c.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Notifications cleared")
			return nil
		},
	})

	return cmd
}

func (a *app) fetchNotifications(cmd *cobra.Command) (*notifications.Cache, error) {
	c := notifications.New(a.client(), notifications.WithLogger(a.log))
	if err := c.Fetch(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}
