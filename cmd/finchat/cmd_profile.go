package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	profileName  string
	profileGoals []string
)

// profileCmd shows or updates the user profile.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Long: `Shows the profile by default. Pass --name or --goal to update it.

Examples:
  finchat profile
  finchat profile --name "Dana" --goal "pay off debt" --goal "save for a house"`,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&profileName, "name", "", "update display name")
	profileCmd.Flags().StringArrayVar(&profileGoals, "goal", nil, "replace financial goals (repeatable)")
}

func runProfile(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	profile, err := client.GetProfile(cmd.Context())
	if err != nil {
		return err
	}

	if profileName != "" || len(profileGoals) > 0 {
		if profileName != "" {
			profile.Name = profileName
		}
		if len(profileGoals) > 0 {
			profile.Goals = profileGoals
		}
		profile, err = client.UpdateProfile(cmd.Context(), *profile)
		if err != nil {
			return err
		}
		fmt.Println("Profile updated.")
	}

	fmt.Printf("Name:  %s\nEmail: %s\nLevel: %s\n", profile.Name, profile.Email, profile.Level)
	if len(profile.Goals) > 0 {
		fmt.Printf("Goals: %s\n", strings.Join(profile.Goals, ", "))
	}
	return nil
}
