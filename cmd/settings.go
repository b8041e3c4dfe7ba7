package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change your preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		s := e.ws.Settings()
		fmt.Printf("theme              %s\n", s.Theme)
		fmt.Printf("difficulty         %s\n", s.DefaultDifficulty)
		fmt.Printf("reminder.enabled   %v\n", s.Reminder.Enabled)
		fmt.Printf("reminder.time      %s\n", s.Reminder.Time)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting (theme, difficulty, reminder.enabled, reminder.time)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		s := e.ws.Settings()
		key, value := strings.ToLower(args[0]), args[1]
		switch key {
		case "theme":
			s.Theme = strings.ToLower(value)
		case "difficulty":
			s.DefaultDifficulty = capitalize(value)
		case "reminder.enabled":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("reminder.enabled: %w", err)
			}
			s.Reminder.Enabled = b
		case "reminder.time":
			s.Reminder.Time = value
		default:
			return fmt.Errorf("unknown setting %q", args[0])
		}

		if err := e.ws.UpdateSettings(cmd.Context(), s); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
}
