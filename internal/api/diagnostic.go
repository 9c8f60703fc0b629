package api

import (
	"context"
	"fmt"
	"net/http"
)

// GetDiagnostic fetches the placement test used to assign a starting level.
func (c *Client) GetDiagnostic(ctx context.Context) (*DiagnosticTest, error) {
	var test DiagnosticTest
	if err := c.do(ctx, http.MethodGet, "/diagnostic", nil, &test); err != nil {
		return nil, fmt.Errorf("fetch diagnostic: %w", err)
	}
	return &test, nil
}

// SubmitDiagnostic submits placement answers and returns the assigned level.
func (c *Client) SubmitDiagnostic(ctx context.Context, testID string, answers map[string]int) (*DiagnosticResult, error) {
	var result DiagnosticResult
	body := map[string]interface{}{"test_id": testID, "answers": answers}
	if err := c.do(ctx, http.MethodPost, "/diagnostic/"+testID+"/submit", body, &result); err != nil {
		return nil, fmt.Errorf("submit diagnostic: %w", err)
	}
	return &result, nil
}
