package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetQuiz fetches a quiz for the given topic.
func (c *Client) GetQuiz(ctx context.Context, topic string) (*Quiz, error) {
	var quiz Quiz
	path := "/quizzes?topic=" + url.QueryEscape(topic)
	if err := c.do(ctx, http.MethodGet, path, nil, &quiz); err != nil {
		return nil, fmt.Errorf("fetch quiz: %w", err)
	}
	return &quiz, nil
}

// SubmitQuiz grades the given answers. answers maps question IDs to the
// chosen option index.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers map[string]int) (*QuizResult, error) {
	var result QuizResult
	sub := QuizSubmission{QuizID: quizID, Answers: answers}
	if err := c.do(ctx, http.MethodPost, "/quizzes/"+quizID+"/submit", sub, &result); err != nil {
		return nil, fmt.Errorf("submit quiz: %w", err)
	}
	return &result, nil
}
