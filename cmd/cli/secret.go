package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func secretCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets referenced from profiles",
		Long: "Store and remove secrets in the keyring. Profiles reference them as " +
			"keyring:<service>/<user> in any config value.",
	}

	set := &cobra.Command{
		Use:   "set [service] [user]",
		Short: "Store a secret read from the terminal or stdin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stderr, "Secret for %s/%s: ", args[0], args[1])
			secret, err := a.readSecret()
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			if secret == "" {
				return errors.New("secret cannot be empty")
			}
			if err := a.store.Set(args[0], args[1], secret); err != nil {
				return fmt.Errorf("failed to store secret: %w", err)
			}
			fmt.Fprintf(a.stdout, "stored keyring:%s/%s\n", args[0], args[1])
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [service] [user]",
		Short: "Remove a stored secret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete secret: %w", err)
			}
			fmt.Fprintf(a.stdout, "deleted keyring:%s/%s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

// readSecret reads without echo from a terminal, otherwise one line of stdin.
func (a *app) readSecret() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(a.stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}
