package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/studytools"
)

// toolFunc runs one study tool over text.
type toolFunc func(ctx context.Context, tools *studytools.Service, text string) (history.Item, error)

// runTool generates an item from the material in args, saves it and
// prints it.
func runTool(cmd *cobra.Command, args []string, fn toolFunc) error {
	return runToolWith(cmd, func(e *appEnv) (string, error) {
		return materialOrContent(cmd, e, args)
	}, fn)
}

// runToolWith is runTool with a custom input source.
func runToolWith(cmd *cobra.Command, input func(*appEnv) (string, error), fn toolFunc) error {
	return runGenerator(cmd, input, func(ctx context.Context, p llm.Provider, text string) (history.Item, error) {
		return fn(ctx, studytools.NewService(p), text)
	})
}

// runGenerator reads input, produces an item through the Generator, saves
// it and prints it.
func runGenerator(cmd *cobra.Command, input func(*appEnv) (string, error), produce func(context.Context, llm.Provider, string) (history.Item, error)) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	text, err := input(e)
	if err != nil {
		return err
	}
	provider, err := e.generator(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := e.callContext(cmd.Context())
	defer cancel()
	item, err := produce(ctx, provider, text)
	if err != nil {
		return err
	}
	if err := e.ws.SaveItem(cmd.Context(), item); err != nil {
		return fmt.Errorf("save %s: %w", item.Kind().Label(), err)
	}
	printItem(cmd.OutOrStdout(), item)
	return nil
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Write exam-focused notes for the study material or a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, args, func(ctx context.Context, t *studytools.Service, text string) (history.Item, error) {
			return t.Summarize(ctx, text)
		})
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Explain source code step by step",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, args, func(ctx context.Context, t *studytools.Service, text string) (history.Item, error) {
			return t.ExplainCode(ctx, text)
		})
	},
}

var labReportCmd = &cobra.Command{
	Use:   "labreport",
	Short: "Write a lab report from experiment code and recorded results",
	RunE: func(cmd *cobra.Command, args []string) error {
		codeFile, _ := cmd.Flags().GetString("code")
		resultsFile, _ := cmd.Flags().GetString("results")
		if codeFile == "" && resultsFile == "" {
			return fmt.Errorf("at least one of --code or --results is required")
		}
		var code, results string
		var err error
		if codeFile != "" {
			if code, err = readInput(cmd, []string{codeFile}); err != nil {
				return err
			}
		}
		if resultsFile != "" {
			if results, err = readInput(cmd, []string{resultsFile}); err != nil {
				return err
			}
		}
		noMaterial := func(*appEnv) (string, error) { return "", nil }
		return runToolWith(cmd, noMaterial, func(ctx context.Context, t *studytools.Service, _ string) (history.Item, error) {
			return t.LabReport(ctx, code, results)
		})
	},
}

var diagramCmd = &cobra.Command{
	Use:   "diagram [file]",
	Short: "Generate a Mermaid diagram of the key concepts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, args, func(ctx context.Context, t *studytools.Service, text string) (history.Item, error) {
			return t.Diagram(ctx, text)
		})
	},
}

var audioCmd = &cobra.Command{
	Use:   "audio [file]",
	Short: "Write a narration script to listen to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, args, func(ctx context.Context, t *studytools.Service, text string) (history.Item, error) {
			return t.AudioSummary(ctx, text)
		})
	},
}

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Chat with a tutor about your study material",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		material := e.ws.Content()
		if material == "" {
			return errNoContent
		}
		provider, err := e.generator(cmd.Context())
		if err != nil {
			return err
		}
		tools := studytools.NewService(provider)

		out := cmd.OutOrStdout()
		you := color.New(color.FgCyan, color.Bold)
		tutor := color.New(color.FgMagenta, color.Bold)
		fmt.Fprintln(out, "Ask about your study material. Type 'exit' or press Ctrl+D to finish.")

		var (
			msgs []history.ChatMessage
			item history.Item
		)
		in := bufio.NewScanner(cmd.InOrStdin())
		for {
			you.Fprint(out, "you> ")
			if !in.Scan() {
				fmt.Fprintln(out)
				break
			}
			line := strings.TrimSpace(in.Text())
			if line == "exit" || line == "quit" {
				break
			}
			if line == "" {
				continue
			}

			ctx, cancel := e.callContext(cmd.Context())
			next, err := tools.Chat(ctx, material, msgs, line)
			cancel()
			if err != nil {
				printError(err)
				continue
			}
			msgs = next
			tutor.Fprint(out, "tutor> ")
			fmt.Fprintln(out, msgs[len(msgs)-1].Content)

			if item.ID == "" {
				item = tools.ChatItem(msgs, "Tutor")
			} else {
				item.Payload = history.Chat{Messages: msgs, ModeTitle: "Tutor"}
			}
			if err := e.ws.SaveItem(cmd.Context(), item); err != nil {
				return fmt.Errorf("save conversation: %w", err)
			}
		}
		return in.Err()
	},
}

func init() {
	labReportCmd.Flags().String("code", "", "File with the experiment code")
	labReportCmd.Flags().String("results", "", "File with the recorded results")
}
