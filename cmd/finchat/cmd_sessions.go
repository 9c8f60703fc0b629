package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sessionsCmd manages locally stored chat sessions.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List or delete locally stored chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadClient()
		if err != nil {
			return err
		}
		sessions, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer sessions.Close()

		list, err := sessions.ListSessions(25)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}
		for _, s := range list {
			title := s.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %s  %s\n", s.ID, s.LastActive.Format("2006-01-02 15:04"), title)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session and its cached turns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadClient()
		if err != nil {
			return err
		}
		sessions, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer sessions.Close()

		if err := sessions.DeleteSession(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print a session's cached transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadClient()
		if err != nil {
			return err
		}
		sessions, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer sessions.Close()

		turns, err := sessions.History(args[0], 0)
		if err != nil {
			return err
		}
		for _, turn := range turns {
			fmt.Printf("You: %s\n\nAssistant: %s\n\n---\n", turn.UserInput, turn.Response)
		}
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}
