package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// diagnosticCmd runs the placement test that assigns a starting level.
var diagnosticCmd = &cobra.Command{
	Use:   "diagnostic",
	Short: "Take the placement test to find your starting level",
	RunE:  runDiagnostic,
}

func runDiagnostic(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	test, err := client.GetDiagnostic(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("diagnostic fetched", zap.String("id", test.ID), zap.Int("questions", len(test.Questions)))

	fmt.Printf("Placement test (%d questions)\n\n", len(test.Questions))

	reader := bufio.NewReader(os.Stdin)
	answers := make(map[string]int)
	for i, q := range test.Questions {
		fmt.Printf("%d. %s\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("   %d) %s\n", j+1, opt)
		}
		choice, err := readChoice(reader, len(q.Options))
		if err != nil {
			return err
		}
		answers[q.ID] = choice - 1
		fmt.Println()
	}

	result, err := client.SubmitDiagnostic(cmd.Context(), test.ID, answers)
	if err != nil {
		return err
	}

	fmt.Printf("Score: %d/%d\nAssigned level: %s\n", result.Score, result.Total, result.Level)
	return nil
}
