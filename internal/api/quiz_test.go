package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetQuiz(t *testing.T) {
	want := Quiz{
		ID:    "q-7",
		Topic: "budgeting",
		Title: "Budgeting Basics",
		Questions: []QuizQuestion{
			{ID: "1", Prompt: "What is the 50/30/20 rule?", Options: []string{"a", "b", "c"}},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quizzes" || r.URL.Query().Get("topic") != "budgeting" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(want)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	quiz, err := client.GetQuiz(context.Background(), "budgeting")
	if err != nil {
		t.Fatalf("GetQuiz failed: %v", err)
	}
	if diff := cmp.Diff(want, *quiz); diff != "" {
		t.Errorf("Quiz mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitQuiz(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quizzes/q-7/submit" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var sub QuizSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sub.Answers["1"] != 2 {
			t.Errorf("Expected answer 2 for question 1, got %d", sub.Answers["1"])
		}
		json.NewEncoder(w).Encode(QuizResult{QuizID: "q-7", Score: 1, Total: 1, Passed: true})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.SubmitQuiz(context.Background(), "q-7", map[string]int{"1": 2})
	if err != nil {
		t.Fatalf("SubmitQuiz failed: %v", err)
	}
	if !result.Passed || result.Score != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestSubmitDiagnosticAssignsLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/diagnostic":
			json.NewEncoder(w).Encode(DiagnosticTest{
				ID:        "d-1",
				Questions: []QuizQuestion{{ID: "1", Prompt: "p", Options: []string{"x", "y"}}},
			})
		case "/diagnostic/d-1/submit":
			json.NewEncoder(w).Encode(DiagnosticResult{TestID: "d-1", Level: "intermediate", Score: 7, Total: 10})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	test, err := client.GetDiagnostic(context.Background())
	if err != nil {
		t.Fatalf("GetDiagnostic failed: %v", err)
	}

	result, err := client.SubmitDiagnostic(context.Background(), test.ID, map[string]int{"1": 0})
	if err != nil {
		t.Fatalf("SubmitDiagnostic failed: %v", err)
	}
	if result.Level != "intermediate" {
		t.Errorf("Expected level intermediate, got %q", result.Level)
	}
}
