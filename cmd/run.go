package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/app"
	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/screen"
	quizscreen "github.com/studybuddy/studybuddy/internal/screens/quiz"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive app",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start a quiz on your study material",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _ := cmd.Flags().GetString("mode")
		mode, err := quiz.ParseMode(m)
		if err != nil {
			return err
		}
		return runApp(cmd, func(deps *shared.Deps) (screen.Screen, error) {
			content := deps.Workspace.Content()
			if content == "" {
				return nil, errNoContent
			}
			return quizscreen.New(deps, mode, content), nil
		})
	},
}

// runApp opens the workspace, builds dependencies, and launches the TUI.
// start optionally picks a screen to open above home.
func runApp(cmd *cobra.Command, start func(*shared.Deps) (screen.Screen, error)) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	offline := false
	provider, err := e.generator(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		e.log.Warn("generator unavailable", zap.Error(err))
		// An empty mock fails every call as unavailable.
		provider = llm.NewMockProvider()
		offline = true
	}

	deps, err := e.deps(provider)
	if err != nil {
		return err
	}
	opts := app.Options{Deps: deps, Offline: offline}
	if start != nil {
		if opts.Start, err = start(deps); err != nil {
			return err
		}
	}
	return app.Run(cmd.Context(), opts)
}

func init() {
	quizCmd.Flags().StringP("mode", "m", string(quiz.Practice), "Quiz mode: practice or test")
}
