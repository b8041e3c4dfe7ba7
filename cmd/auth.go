package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/studybuddy/studybuddy/internal/auth"
	"github.com/studybuddy/studybuddy/internal/store"
)

// readPassword returns --password, else prompts with echo off when stdin
// is a terminal, else reads the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	in := cmd.InOrStdin()
	if f, ok := in.(interface{ Fd() uintptr }); ok && term.IsTerminal(f.Fd()) {
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		err = e.auth.Register(cmd.Context(), args[0], password)
		if errors.Is(err, store.ErrUserExists) {
			return fmt.Errorf("username %q is taken", args[0])
		}
		if err != nil {
			return err
		}
		color.Green("Account created. Run `studybuddy login %s` to sign in.", strings.ToLower(args[0]))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and switch to your workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		token, err := e.auth.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := auth.SaveSession(auth.SessionPath(e.dataDir), token); err != nil {
			return err
		}
		user, err := e.auth.Verify(token)
		if err != nil {
			return err
		}
		color.Green("Signed in as %s.", user)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and return to the local workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := auth.ClearSession(auth.SessionPath(e.dataDir)); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.auth.CurrentUser(auth.SessionPath(e.dataDir))
		if errors.Is(err, auth.ErrInvalidToken) {
			fmt.Println("Session expired; using the local workspace.")
			return nil
		}
		if err != nil {
			return err
		}
		if user == auth.LocalUser {
			fmt.Println("Not signed in; using the local workspace.")
			return nil
		}
		fmt.Println(user)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
	loginCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
}
