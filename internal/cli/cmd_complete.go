package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/lifecycle"
)

// newCompleteCmd creates the complete command
func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complete <id>",
		Aliases: []string{"done"},
		Short:   "Toggle a task's completion",
		Long: `Toggle a task between completed and active.

Completing a Top 5 task frees its slot. Completed daily reminders come
back the next morning.

Example:
  topfive complete 3f2a
  topfive complete 3f2a --workspace Personal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ws, err := resolveWorkspace(cmd.Flag("workspace").Value.String())
			if err != nil {
				return err
			}

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
			toggled, err := session.ToggleComplete(cmd.Context(), ws, t.ID)
			if err != nil {
				return err
			}

			if toggled.Completed {
				fmt.Printf("Completed %s (%s)\n", shortID(t.ID), truncate(t.Text, 50))
			} else {
				fmt.Printf("Reopened %s (%s)\n", shortID(t.ID), truncate(t.Text, 50))
			}
			return nil
		},
	}

	cmd.Flags().StringP("workspace", "w", "", "workspace (Work, Projects, Personal)")

	return cmd
}
