package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/lifecycle"
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Long: `Delete a task after confirmation.

Example:
  topfive delete 3f2a
  topfive delete 3f2a --force   # skip the confirmation`,
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
			force, _ := cmd.Flags().GetBool("force")

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
			session.RequestDelete(ws, t.ID)

			if !force {
				fmt.Printf("Delete %q? [y/N] ", truncate(t.Text, 50))
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					session.CancelDelete()
					fmt.Println("Cancelled")
					return nil
				}
			}

			if err := session.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("Deleted %s\n", shortID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringP("workspace", "w", "", "workspace (Work, Projects, Personal)")
	cmd.Flags().BoolP("force", "f", false, "delete without confirmation")

	return cmd
}
