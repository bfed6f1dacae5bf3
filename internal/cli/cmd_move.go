package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/lifecycle"
	"github.com/topfiveapp/topfive/internal/task"
)

// newMoveCmd creates the move command
func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <priority>",
		Short: "Move a task to a different priority",
		Long: `Move a task between the Top 5, Urgent and Hopper buckets.

Moving into Top 5 goes through the same capacity check as adding: when
all five slots are held by active tasks a conflict opens.

Example:
  topfive move 3f2a "Top 5"
  topfive move 3f2a Hopper --workspace Projects`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			priority := task.Priority(args[1])
			if !task.IsValidPriority(priority) {
				return fmt.Errorf("unknown priority %q (valid: \"Top 5\", Urgent, Hopper)", args[1])
			}

			ws, err := resolveWorkspace(cmd.Flag("workspace").Value.String())
			if err != nil {
				return err
			}

			resolve, _ := cmd.Flags().GetString("resolve")
			replaceID, _ := cmd.Flags().GetString("replace-id")

			r, closeRepo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			t, err := findTask(cmd, r, ws, args[0])
			if err != nil {
				return err
			}

			session := lifecycle.NewSession(r)
			conflict, err := session.MovePriority(cmd.Context(), ws, t.ID, priority)
			if err != nil {
				return err
			}

			if conflict != nil {
				id, err := resolveConflict(cmd.Context(), session, conflict, resolve, replaceID)
				if err != nil {
					return err
				}
				if id == "" {
					fmt.Println("Cancelled, task unchanged")
					return nil
				}
			}

			fmt.Printf("Moved %s to %s\n", shortID(t.ID), priority)
			return nil
		},
	}

	cmd.Flags().StringP("workspace", "w", "", "workspace (Work, Projects, Personal)")
	cmd.Flags().String("resolve", "", "conflict resolution: urgent, replace, cancel")
	cmd.Flags().String("replace-id", "", "task to replace when --resolve replace")

	return cmd
}
