package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage saved items",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		var items []history.Item
		if kindFlag != "" {
			k, err := history.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			items = e.ws.ItemsOfKind(k)
		} else {
			items = e.ws.Items()
		}
		slices.Reverse(items)
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}

		if len(items) == 0 {
			fmt.Println("No saved items.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-16s  %s\n", "ID", "Saved", "Type", "Title")
		fmt.Println(strings.Repeat("─", 100))
		for _, it := range items {
			fmt.Printf("%-36s  %-19s  %-16s  %s\n", it.ID, it.Timestamp, it.Kind().Label(), truncate(it.Title(), 40))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		it, ok := e.ws.Item(args[0])
		if !ok {
			return fmt.Errorf("item %s not found", args[0])
		}
		printItem(cmd.OutOrStdout(), it)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the history as JSON to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		data, err := e.ws.ExportHistory()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if len(args) == 0 || args[0] == "-" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("Exported %d items to %s.\n", len(e.ws.Items()), args[0])
		return nil
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge items from an exported JSON file; existing ids are kept",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		added, err := e.ws.ImportHistory(cmd.Context(), []byte(text))
		var ierr *history.ImportError
		if errors.As(err, &ierr) {
			return fmt.Errorf("import rejected, nothing was changed: %w", err)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d new items.\n", added)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete saved items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.ws.DeleteItems(cmd.Context(), args...)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d of %d items.\n", n, len(args))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved items (a backup is kept for restore)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n := len(e.ws.Items())
		if n == 0 {
			fmt.Println("History is already empty.")
			return nil
		}
		if !yes && !confirm(cmd, fmt.Sprintf("Delete all %d saved items?", n)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := e.ws.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Cleared %d items. Run `studybuddy history restore` to undo.\n", n)
		return nil
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the history with the latest backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.ws.RestoreHistory(cmd.Context())
		if errors.Is(err, workspace.ErrNoBackups) {
			fmt.Println("No backup to restore.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d items.\n", n)
		return nil
	},
}

// confirm asks a yes/no question on stdin.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	var answer string
	fmt.Fscanln(cmd.InOrStdin(), &answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printItem writes an item as plain text.
func printItem(w io.Writer, it history.Item) {
	heading := color.New(color.Bold)
	dim := color.New(color.Faint)

	heading.Fprintf(w, "%s: %s\n", it.Kind().Label(), it.Title())
	dim.Fprintf(w, "%s  %s\n\n", it.ID, it.Timestamp)

	switch p := it.Payload.(type) {
	case history.Summary:
		fmt.Fprintln(w, p.Content)
	case history.AudioSummary:
		fmt.Fprintln(w, p.Content)
	case history.LabReport:
		fmt.Fprintln(w, p.Content)
	case history.CodeExplanation:
		fmt.Fprintln(w, p.Content)
	case history.Diagram:
		fmt.Fprintln(w, "```mermaid")
		fmt.Fprintln(w, p.Mermaid)
		fmt.Fprintln(w, "```")
		if p.ImageURL != "" {
			fmt.Fprintln(w, "Image:", p.ImageURL)
		}
	case history.Quiz:
		printQuiz(w, p)
	case history.Roadmap:
		printRoadmap(w, p.Nodes)
	case history.CodeFlowchart:
		run, err := flowchart.Walk(p.FlowchartData)
		if err != nil {
			fmt.Fprintln(w, "Flowchart is broken:", err)
			for _, is := range flowchart.Validate(p.FlowchartData) {
				fmt.Fprintln(w, "  -", is.String())
			}
			return
		}
		fmt.Fprintln(w, flowchart.Render(run, flowchart.PlainStyles()))
	case history.Chat:
		for _, m := range p.Messages {
			who := "you"
			if m.Role == history.RoleModel {
				who = "tutor"
			}
			heading.Fprintf(w, "%s> ", who)
			fmt.Fprintln(w, m.Content)
		}
	default:
		panic(fmt.Sprintf("cmd: unhandled payload %T", p))
	}
}

func printQuiz(w io.Writer, p history.Quiz) {
	r := p.Result
	fmt.Fprintf(w, "%s quiz: %d / %d correct (%.0f%%)\n\n", r.Mode, r.Score, r.Total, r.Percent())
	for i, q := range r.Questions {
		var fb *quiz.Feedback
		if i < len(r.Feedback) {
			fb = r.Feedback[i]
		}
		mark := color.RedString("✗")
		if fb != nil && fb.IsCorrect {
			mark = color.GreenString("✓")
		}
		answer := "(no answer)"
		if i < len(r.UserAnswers) && r.UserAnswers[i].IsSet() {
			answer = r.UserAnswers[i].String()
		}
		fmt.Fprintf(w, "%s %d. %s\n   Your answer: %s\n", mark, i+1, q.Question, answer)
		if fb != nil && fb.FeedbackText != "" {
			fmt.Fprintf(w, "   %s\n", fb.FeedbackText)
		}
	}
}

func printRoadmap(w io.Writer, nodes []roadmap.Node) {
	icons := map[roadmap.Status]string{
		roadmap.NotStarted: "○",
		roadmap.InProgress: "◐",
		roadmap.Completed:  "●",
	}
	roadmap.Walk(nodes, func(n roadmap.Node, depth int) bool {
		fmt.Fprintf(w, "%s%s %s  %s\n", strings.Repeat("  ", depth), icons[n.Status], n.Title, color.New(color.Faint).Sprint(n.ID))
		if n.Notes != "" {
			fmt.Fprintf(w, "%s  note: %s\n", strings.Repeat("  ", depth), n.Notes)
		}
		return true
	})
	p := roadmap.ProgressOf(nodes)
	fmt.Fprintf(w, "\n%.0f%% complete\n", p.Percent())
}

func init() {
	historyListCmd.Flags().StringP("kind", "k", "", "Only list items of this type (e.g. quiz, roadmap, summary)")
	historyListCmd.Flags().IntP("limit", "n", 0, "Show at most this many items")
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyRestoreCmd)
}
