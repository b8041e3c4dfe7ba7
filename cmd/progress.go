package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show scores by topic, streaks and badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p := e.ws.Progress()
		bold := color.New(color.Bold)

		bold.Printf("Progress for %s\n", e.ws.User())
		fmt.Println(p.Summary())
		fmt.Printf("Study time: %s\n", p.TotalStudyTime().Truncate(time.Second))

		topics := p.Topics()
		if len(topics) > 0 {
			weak := p.WeakTopics(progress.WeakThreshold)
			fmt.Println()
			bold.Println("Topics")
			fmt.Printf("%-30s  %8s  %8s\n", "Topic", "Correct", "Accuracy")
			fmt.Println(strings.Repeat("─", 50))
			for _, t := range topics {
				s := p.ScoresByTopic[t]
				line := fmt.Sprintf("%-30s  %3d/%-4d  %7.0f%%", truncate(t, 30), s.Correct, s.Total, s.Accuracy()*100)
				if slices.Contains(weak, t) {
					color.New(color.FgRed).Println(line + "  weak")
					continue
				}
				fmt.Println(line)
			}
		}

		fmt.Println()
		bold.Println("Badges")
		for _, id := range progress.Badges {
			if p.HasBadge(id) {
				color.Green("◆ %-14s %s", progress.BadgeTitle(id), progress.BadgeDescription(id))
			} else {
				color.New(color.Faint).Printf("◇ %-14s %s\n", progress.BadgeTitle(id), progress.BadgeDescription(id))
			}
		}
		return nil
	},
}
