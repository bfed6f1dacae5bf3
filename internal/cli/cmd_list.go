package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/task"
)

var (
	top5Style     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	urgentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	hopperStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	reminderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks in a workspace, grouped by priority.

Example:
  topfive list
  topfive list --workspace Personal
  topfive list --category Ops
  topfive list --completed`,
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

			tasks, err := r.List(cmd.Context(), ws)
			if err != nil {
				return err
			}

			if cat, _ := cmd.Flags().GetString("category"); cat != "" {
				if !task.IsValidCategory(task.Category(cat)) {
					return fmt.Errorf("unknown category %q", cat)
				}
				tasks = keepTasks(tasks, func(t *task.Task) bool {
					return t.Category == task.Category(cat)
				})
			}
			if showCompleted, _ := cmd.Flags().GetBool("completed"); !showCompleted {
				tasks = keepTasks(tasks, func(t *task.Task) bool { return !t.Completed })
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(tasks)
			}

			if len(tasks) == 0 {
				fmt.Printf("No tasks in %s. Create one with: topfive add \"Your task\"\n", ws)
				return nil
			}

			styled := isatty.IsTerminal(os.Stdout.Fd())

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tCATEGORY\tDROP DEAD\tTASK")
			fmt.Fprintln(w, "──\t────────\t────────\t─────────\t────")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					shortID(t.ID),
					renderPriority(t, styled),
					t.Category,
					orDash(t.DropDead),
					renderText(t, styled),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringP("workspace", "w", "", "workspace (Work, Projects, Personal)")
	cmd.Flags().StringP("category", "c", "", "filter by category")
	cmd.Flags().Bool("completed", false, "include completed tasks")

	return cmd
}

func keepTasks(tasks []*task.Task, keep func(*task.Task) bool) []*task.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderPriority(t *task.Task, styled bool) string {
	label := string(t.Priority)
	if !styled {
		return label
	}
	switch t.Priority {
	case task.PriorityTop5:
		return top5Style.Render(label)
	case task.PriorityUrgent:
		return urgentStyle.Render(label)
	default:
		return hopperStyle.Render(label)
	}
}

func renderText(t *task.Task, styled bool) string {
	text := truncate(t.Text, 60)
	if t.IsDailyReminder {
		text = text + " (daily)"
	}
	if !styled {
		if t.Completed {
			return text + " ✓"
		}
		return text
	}
	if t.Completed {
		return doneStyle.Render(text)
	}
	if t.IsDailyReminder {
		return reminderStyle.Render(text)
	}
	return text
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
