package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/llm"
)

var flowchartCmd = &cobra.Command{
	Use:   "flowchart",
	Short: "Turn source code into a control-flow chart",
}

var flowchartGenerateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a flowchart from source code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := func(e *appEnv) (string, error) { return materialOrContent(cmd, e, args) }
		return runGenerator(cmd, input, func(ctx context.Context, p llm.Provider, code string) (history.Item, error) {
			nodes, err := flowchart.NewService(p).FromCode(ctx, code)
			if err != nil {
				return history.Item{}, err
			}
			return history.New(history.CodeFlowchart{FlowchartData: nodes, SourceCode: code}, time.Now()), nil
		})
	},
}

var flowchartRenderCmd = &cobra.Command{
	Use:   "render <id|file.json>",
	Short: "Render a saved flowchart, or a JSON node list from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := loadFlowchart(cmd, args[0])
		if err != nil {
			return err
		}

		if issues := flowchart.Validate(nodes); len(issues) > 0 {
			warn := color.New(color.FgYellow)
			for _, is := range issues {
				warn.Fprintln(os.Stderr, "warning:", is.String())
			}
		}
		run, err := flowchart.Walk(nodes)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), flowchart.Render(run, flowchart.PlainStyles()))
		return nil
	},
}

// loadFlowchart reads nodes from a saved item id, falling back to a file.
func loadFlowchart(cmd *cobra.Command, ref string) ([]flowchart.Node, error) {
	if data, err := os.ReadFile(ref); err == nil {
		var nodes []flowchart.Node
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ref, err)
		}
		return nodes, nil
	}

	e, err := openEnv(cmd)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	it, ok := e.ws.Item(ref)
	if !ok {
		return nil, fmt.Errorf("no saved item or file named %s", ref)
	}
	fc, ok := it.Payload.(history.CodeFlowchart)
	if !ok {
		return nil, fmt.Errorf("item %s is a %s, not a flowchart", it.ID, it.Kind().Label())
	}
	return fc.FlowchartData, nil
}

func init() {
	flowchartCmd.AddCommand(flowchartGenerateCmd)
	flowchartCmd.AddCommand(flowchartRenderCmd)
}
