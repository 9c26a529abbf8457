package main

import (
	"fmt"
	"io"
	"strings"

	"tracker/internal/client/taskstore"
	"tracker/internal/dto"
	"tracker/internal/model"

	"github.com/spf13/cobra"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and move tasks",
	}
	cmd.AddCommand(a.tasksListCmd())
	cmd.AddCommand(a.tasksMoveCmd())
	return cmd
}

func (a *app) store() *taskstore.Store {
	return taskstore.New(a.client(), taskstore.WithLogger(a.log))
}

func (a *app) tasksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			status, _ := cmd.Flags().GetString("status")
			search, _ := cmd.Flags().GetString("search")
			board, _ := cmd.Flags().GetBool("board")

			s := a.store()
			if err := s.FetchAll(cmd.Context()); err != nil {
				return err
			}

			tasks := s.Filter(priority, status)
			if search != "" {
				tasks = taskstore.Search(search, tasks)
			}

			w := cmd.OutOrStdout()
			if !board {
				printTasks(w, tasks)
				return nil
			}
			lanes := taskstore.GroupByPriority(tasks)
			for _, p := range model.Priorities {
				fmt.Fprintf(w, "== %s (%d)\n", p, len(lanes[p]))
				printTasks(w, lanes[p])
			}
			return nil
		},
	}

	cmd.Flags().String("priority", taskstore.All, "Priority lane, or \"all\"")
	cmd.Flags().String("status", taskstore.All, "Status, or \"all\"")
	cmd.Flags().StringP("search", "s", "", "Match title or description")
	cmd.Flags().Bool("board", false, "Group by priority lane")

	return cmd
}

func (a *app) tasksMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <priority>",
		Short: "Move a task to another priority lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, p := args[0], model.Priority(args[1])
			if !p.Valid() {
				return fmt.Errorf("unknown priority %q, want one of: %s", p, joinPriorities())
			}

			s := a.store()
			if err := s.FetchAll(cmd.Context()); err != nil {
				return err
			}
			if err := s.StartDrag(id); err != nil {
				return fmt.Errorf("task %s: %w", id, err)
			}
			original := s.Snapshot().OriginalPriority
			if err := s.HandleDrop(cmd.Context(), p); err != nil {
				return err
			}

			if original == p {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s already in %q\n", id, p)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s moved from %q to %q\n", id, original, p)
			return nil
		},
	}
}

func printTasks(w io.Writer, tasks []dto.Task) {
	for _, t := range tasks {
		fmt.Fprintf(w, "%-36s  %-12s  %-12s  %s\n", t.ID, t.Priority, t.Status, t.Title)
	}
}

func joinPriorities() string {
	names := make([]string, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
