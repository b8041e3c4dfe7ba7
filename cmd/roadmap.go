package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate and track a study roadmap",
}

var roadmapGenerateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a roadmap from the study material or a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := func(e *appEnv) (string, error) { return materialOrContent(cmd, e, args) }
		return runGenerator(cmd, input, func(ctx context.Context, p llm.Provider, text string) (history.Item, error) {
			nodes, err := roadmap.NewService(p).Generate(ctx, text)
			if err != nil {
				return history.Item{}, err
			}
			return history.New(history.Roadmap{Nodes: nodes, SourceContent: text}, time.Now()), nil
		})
	},
}

// loadRoadmap returns the roadmap named by --id, or the latest one.
func loadRoadmap(cmd *cobra.Command, e *appEnv) (history.Item, history.Roadmap, error) {
	id, _ := cmd.Flags().GetString("id")
	var it history.Item
	if id != "" {
		found, ok := e.ws.Item(id)
		if !ok {
			return it, history.Roadmap{}, fmt.Errorf("item %s not found", id)
		}
		it = found
	} else {
		items := e.ws.ItemsOfKind(history.KindRoadmap)
		if len(items) == 0 {
			return it, history.Roadmap{}, fmt.Errorf("no roadmap saved yet; run `studybuddy roadmap generate`")
		}
		it = items[len(items)-1]
	}
	rm, ok := it.Payload.(history.Roadmap)
	if !ok {
		return it, history.Roadmap{}, fmt.Errorf("item %s is a %s, not a roadmap", it.ID, it.Kind().Label())
	}
	return it, rm, nil
}

// editRoadmap runs edit on the selected roadmap's nodes and saves the
// result in place.
func editRoadmap(cmd *cobra.Command, edit func([]roadmap.Node) ([]roadmap.Node, error)) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	it, rm, err := loadRoadmap(cmd, e)
	if err != nil {
		return err
	}
	nodes, err := edit(rm.Nodes)
	if err != nil {
		return err
	}
	rm.Nodes = nodes
	it.Payload = rm
	if err := e.ws.SaveItem(cmd.Context(), it); err != nil {
		return err
	}
	printRoadmap(cmd.OutOrStdout(), nodes)
	return nil
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the latest roadmap with statuses and node ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		it, _, err := loadRoadmap(cmd, e)
		if err != nil {
			return err
		}
		printItem(cmd.OutOrStdout(), it)
		return nil
	},
}

var roadmapSetCmd = &cobra.Command{
	Use:   "set <node-id> <status>",
	Short: "Set a node's status (not-started, in-progress, completed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := roadmap.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return editRoadmap(cmd, func(nodes []roadmap.Node) ([]roadmap.Node, error) {
			return roadmap.SetLeafStatus(nodes, args[0], status)
		})
	},
}

var roadmapNoteCmd = &cobra.Command{
	Use:   "note <node-id> <text>...",
	Short: "Replace a node's notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes := strings.Join(args[1:], " ")
		return editRoadmap(cmd, func(nodes []roadmap.Node) ([]roadmap.Node, error) {
			return roadmap.Apply(nodes, args[0], roadmap.Patch{Notes: &notes})
		})
	},
}

var roadmapProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show how much of the roadmap is complete",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		it, rm, err := loadRoadmap(cmd, e)
		if err != nil {
			return err
		}
		p := roadmap.ProgressOf(rm.Nodes)
		fmt.Printf("%s: %d of %d topics complete (%.0f%%)\n", it.Title(), p.Completed, p.Total, p.Percent())
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{roadmapShowCmd, roadmapSetCmd, roadmapNoteCmd, roadmapProgressCmd} {
		c.Flags().String("id", "", "Roadmap item id (default: the latest roadmap)")
	}

	roadmapCmd.AddCommand(roadmapGenerateCmd)
	roadmapCmd.AddCommand(roadmapShowCmd)
	roadmapCmd.AddCommand(roadmapSetCmd)
	roadmapCmd.AddCommand(roadmapNoteCmd)
	roadmapCmd.AddCommand(roadmapProgressCmd)
}
