package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// coursesCmd lists courses or shows lesson content.
var coursesCmd = &cobra.Command{
	Use:   "courses [course-id [lesson-id]]",
	Short: "Browse courses and read lesson content",
	Long: `Without arguments, lists the course catalog. With a course ID, lists
its lessons. With a course and lesson ID, renders the lesson content.

Examples:
  finchat courses
  finchat courses saving-101
  finchat courses saving-101 lesson-3`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCourses,
}

func runCourses(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	switch len(args) {
	case 0:
		courses, err := client.ListCourses(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("courses listed", zap.Int("count", len(courses)))
		for _, c := range courses {
			fmt.Printf("%-16s [%s] %s (%d lessons)\n", c.ID, c.Level, c.Title, c.LessonCount)
			if c.Description != "" {
				fmt.Printf("  %s\n", c.Description)
			}
		}
		return nil

	case 1:
		lessons, err := client.GetLessons(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, l := range lessons {
			fmt.Printf("%2d. %-16s %s\n", l.Order, l.ID, l.Title)
		}
		return nil

	default:
		lesson, err := client.GetLesson(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			// Renderer unavailable (odd TERM); print raw markdown
			fmt.Println(lesson.Body)
			return nil
		}
		out, err := renderer.Render(lesson.Body)
		if err != nil {
			fmt.Println(lesson.Body)
			return nil
		}
		fmt.Print(out)
		return nil
	}
}
