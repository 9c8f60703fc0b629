package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ListCourses fetches the course catalog.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetLessons fetches the lesson index of a course.
func (c *Client) GetLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	var lessons []Lesson
	if err := c.do(ctx, http.MethodGet, "/courses/"+courseID+"/lessons", nil, &lessons); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// GetLesson fetches a single lesson's markdown content.
func (c *Client) GetLesson(ctx context.Context, courseID, lessonID string) (*Lesson, error) {
	var lesson Lesson
	path := "/courses/" + courseID + "/lessons/" + lessonID
	if err := c.do(ctx, http.MethodGet, path, nil, &lesson); err != nil {
		return nil, fmt.Errorf("fetch lesson: %w", err)
	}
	return &lesson, nil
}

// PrefetchLessons fetches several lessons of a course concurrently, returning
// them in course order. Used to warm the course view without serial latency.
func (c *Client) PrefetchLessons(ctx context.Context, courseID string, lessonIDs []string) ([]Lesson, error) {
	var mu sync.Mutex
	lessons := make([]Lesson, 0, len(lessonIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, id := range lessonIDs {
		id := id
		g.Go(func() error {
			lesson, err := c.GetLesson(ctx, courseID, id)
			if err != nil {
				return err
			}
			mu.Lock()
			lessons = append(lessons, *lesson)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return lessons, nil
}
