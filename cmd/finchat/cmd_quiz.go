package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// quizCmd fetches a quiz and grades answers interactively on stdin.
var quizCmd = &cobra.Command{
	Use:   "quiz [topic]",
	Short: "Take a quiz on a financial-literacy topic",
	Long: `Fetches a quiz for the given topic and asks each question on the
terminal. Answers are submitted to the backend for grading.

Example:
  finchat quiz budgeting`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuiz,
}

func runQuiz(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}
	topic := strings.Join(args, " ")

	quiz, err := client.GetQuiz(cmd.Context(), topic)
	if err != nil {
		return err
	}
	logger.Info("quiz fetched", zap.String("id", quiz.ID), zap.Int("questions", len(quiz.Questions)))

	fmt.Printf("%s (%d questions)\n\n", quiz.Title, len(quiz.Questions))

	reader := bufio.NewReader(os.Stdin)
	answers := make(map[string]int)
	for i, q := range quiz.Questions {
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

	result, err := client.SubmitQuiz(cmd.Context(), quiz.ID, answers)
	if err != nil {
		return err
	}

	fmt.Printf("Score: %d/%d", result.Score, result.Total)
	if result.Passed {
		fmt.Print("  passed!")
	}
	fmt.Println()
	if result.Remarks != "" {
		fmt.Println(result.Remarks)
	}
	return nil
}

// readChoice prompts until the user enters a number in [1, n].
func readChoice(reader *bufio.Reader, n int) (int, error) {
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("read answer: %w", err)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && choice >= 1 && choice <= n {
			return choice, nil
		}
		fmt.Printf("Please enter a number between 1 and %d.\n", n)
	}
}
