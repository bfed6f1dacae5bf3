package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newResetCmd creates the reset-daily command
func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-daily",
		Short: "Reset completed daily reminders",
		Long: `Flip completed daily reminders back to incomplete in every workspace.

The serve command runs this automatically at the configured time; this
command is for manual runs and external schedulers.

Example:
  topfive reset-daily`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			r, closeRepo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			if err := r.ResetDailyReminders(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("Daily reminders reset")
			return nil
		},
	}
}
