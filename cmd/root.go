package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/llm"
)

var rootCmd = &cobra.Command{
	Use:           "studybuddy",
	Short:         "AI study assistant for the terminal",
	Long:          "StudyBuddy turns your study material into quizzes, roadmaps, summaries and more.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

// Execute runs the command line and prints any error in red.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(err)
	}
	return err
}

func printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err)
	if isGeneratorError(err) {
		color.New(color.FgYellow).Fprintln(os.Stderr, llm.Describe(err))
	}
}

// isGeneratorError reports whether err carries a Generator failure the
// user can act on.
func isGeneratorError(err error) bool {
	var (
		rl      *llm.ErrRateLimit
		unavail *llm.ErrProviderUnavailable
	)
	return llm.IsPermanent(err) || errors.As(err, &rl) || errors.As(err, &unavail)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides STUDYBUDDY_DB env var)")
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studybuddy/config.yaml)")
	pf.BoolP("verbose", "v", false, "Log to stderr as well as the log file")
	pf.Bool("ephemeral", false, "Keep the workspace in memory only")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(labReportCmd)
	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(audioCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(flowchartCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
