package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd authenticates against the backend and verifies the credentials.
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in to the assistant backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	fmt.Print("Password: ")
	var password string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	if err := client.Login(cmd.Context(), args[0], password); err != nil {
		return err
	}

	profile, err := client.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", profile.Name, profile.Email)
	return nil
}
