package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/lifecycle"
	"github.com/topfiveapp/topfive/internal/task"
)

// newAddCmd creates the add command
func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Long: `Add a task to a workspace.

Adding a sixth active Top 5 task opens a conflict: move the new task to
Urgent, replace one of the current five, or cancel. On a terminal an
interactive chooser runs; otherwise use --resolve.

Example:
  topfive add "Ship the launch post" --priority "Top 5" --category Content
  topfive add "Water the plants" --daily --workspace Personal
  topfive add "One more" --priority "Top 5" --resolve urgent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			priority, _ := cmd.Flags().GetString("priority")
			category, _ := cmd.Flags().GetString("category")
			dropDead, _ := cmd.Flags().GetString("drop-dead")
			daily, _ := cmd.Flags().GetBool("daily")
			resolve, _ := cmd.Flags().GetString("resolve")
			replaceID, _ := cmd.Flags().GetString("replace-id")

			ws, err := resolveWorkspace(cmd.Flag("workspace").Value.String())
			if err != nil {
				return err
			}

			r, closeRepo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			candidate := &task.Task{
				Text:            strings.Join(args, " "),
				Priority:        task.Priority(priority),
				Category:        task.Category(category),
				DropDead:        dropDead,
				Workspace:       ws,
				IsDailyReminder: daily,
			}

			session := lifecycle.NewSession(r)
			id, conflict, err := session.Add(cmd.Context(), candidate)
			if err != nil {
				return err
			}

			if conflict != nil {
				id, err = resolveConflict(cmd.Context(), session, conflict, resolve, replaceID)
				if err != nil {
					return err
				}
				if id == "" {
					fmt.Println("Cancelled, nothing added")
					return nil
				}
			}

			fmt.Printf("Added %s\n", shortID(id))
			return nil
		},
	}

	cmd.Flags().StringP("priority", "p", string(task.PriorityHopper), `priority ("Top 5", Urgent, Hopper)`)
	cmd.Flags().StringP("category", "c", "", "category (Content, Ops, Strategy, Paid, Other)")
	cmd.Flags().StringP("workspace", "w", "", "workspace (Work, Projects, Personal)")
	cmd.Flags().String("drop-dead", "", "drop-dead date (YYYY-MM-DD)")
	cmd.Flags().Bool("daily", false, "mark as a daily reminder")
	cmd.Flags().String("resolve", "", "conflict resolution: urgent, replace, cancel")
	cmd.Flags().String("replace-id", "", "task to replace when --resolve replace")

	return cmd
}
