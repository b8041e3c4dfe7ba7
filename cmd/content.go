package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errNoContent = errors.New("no study material active; run `studybuddy content add <file>` first")

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the study materials",
}

var contentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a study material from a file, or stdin, and make it active",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		if title == "" && len(args) > 0 && args[0] != "-" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		if title == "" {
			return errors.New("a title is required when reading stdin; pass --title")
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.ws.AddMaterial(cmd.Context(), title, text)
		if err != nil {
			return err
		}
		color.Green("Added %q (%s) and made it active.", m.Title, shortID(m.ID))
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List study materials; the active one is marked",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ms := e.ws.Materials()
		if len(ms) == 0 {
			fmt.Println("No study materials yet.")
			return nil
		}
		active, _ := e.ws.ActiveMaterial()
		w := cmd.OutOrStdout()
		for _, m := range ms {
			mark := " "
			if m.ID == active.ID {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s  %-40s  %s  %d chars\n",
				mark, shortID(m.ID), truncate(m.Title, 40), m.CreatedAt.Format(time.DateOnly), len(m.Content))
		}
		return nil
	},
}

var contentUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a study material active (a unique id prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.ws.FindMaterial(args[0])
		if err != nil {
			return err
		}
		if err := e.ws.SelectMaterial(cmd.Context(), m.ID); err != nil {
			return err
		}
		fmt.Printf("Now studying %q.\n", m.Title)
		return nil
	},
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a study material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.ws.FindMaterial(args[0])
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes && !confirm(cmd, fmt.Sprintf("Delete %q?", m.Title)) {
			return nil
		}
		if err := e.ws.DeleteMaterial(cmd.Context(), m.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %q.\n", m.Title)
		return nil
	},
}

// shortID is the id prefix shown in listings and accepted by use/delete.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var contentSetCmd = &cobra.Command{
	Use:   "set [file]",
	Short: "Replace the active material's text from a file or stdin, adding one if none is active",
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

		if err := e.ws.SetContent(cmd.Context(), text); err != nil {
			return fmt.Errorf("save content: %w", err)
		}
		fmt.Printf("Study material saved (%d characters).\n", len(text))
		return nil
	},
}

var contentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active study material",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, ok := e.ws.ActiveMaterial()
		if !ok {
			fmt.Println("No study material active.")
			return nil
		}
		color.New(color.Bold).Println(m.Title)
		fmt.Println(m.Content)
		return nil
	},
}

// readInput returns the contents of args[0], or stdin when args is empty
// or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// materialOrContent returns the text in args (a file or stdin) when
// given, else the workspace study material.
func materialOrContent(cmd *cobra.Command, e *appEnv, args []string) (string, error) {
	if len(args) > 0 {
		return readInput(cmd, args)
	}
	if c := e.ws.Content(); c != "" {
		return c, nil
	}
	return "", errNoContent
}

func init() {
	contentAddCmd.Flags().StringP("title", "t", "", "Title (defaults to the file name)")
	contentDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking")

	contentCmd.AddCommand(contentAddCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentUseCmd)
	contentCmd.AddCommand(contentDeleteCmd)
	contentCmd.AddCommand(contentSetCmd)
	contentCmd.AddCommand(contentShowCmd)
}
