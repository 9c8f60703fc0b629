package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"finchat/internal/config"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(config.APIConfig{BaseURL: url, Timeout: "5s"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestDoRetriesOnceAfter401(t *testing.T) {
	var profileCalls, refreshCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls++
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "fresh-token"})
		case "/profile":
			profileCalls++
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(Profile{UserID: "u1", Name: "Dana"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.SetTokens("stale-token", "refresh-1")

	profile, err := client.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "Dana" {
		t.Errorf("Expected profile Dana, got %q", profile.Name)
	}
	if profileCalls != 2 {
		t.Errorf("Expected exactly 2 profile calls (401 then replay), got %d", profileCalls)
	}
	if refreshCalls != 1 {
		t.Errorf("Expected exactly 1 refresh call, got %d", refreshCalls)
	}
}

func TestDoGivesUpAfterSecond401(t *testing.T) {
	var profileCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "still-bad"})
			return
		}
		profileCalls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.SetTokens("bad", "refresh-1")

	_, err := client.GetProfile(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if profileCalls != 2 {
		t.Errorf("Expected exactly 2 attempts (no second replay), got %d", profileCalls)
	}
}

func TestDoWithoutRefreshTokenFailsFast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetProfile(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestDecodeErrorPrefersEnvelopeMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorEnvelope{Type: "error", Message: "topic is required"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetQuiz(context.Background(), "")
	if err == nil {
		t.Fatal("Expected an error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "topic is required" {
		t.Errorf("Unexpected APIError: %+v", apiErr)
	}
}

func TestNonStreamingTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, err := NewClient(config.APIConfig{BaseURL: server.URL, Timeout: "50ms"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.ListCourses(context.Background()); err == nil {
		t.Fatal("Expected timeout error for slow non-streaming request")
	}
}

func TestUpdateConfigSwapsClientUnderLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	before := client.restClient()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := client.ListCourses(context.Background()); err != nil {
					t.Errorf("ListCourses failed during config swap: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		if err := client.UpdateConfig(config.APIConfig{BaseURL: server.URL, Timeout: "5s"}); err != nil {
			t.Errorf("UpdateConfig failed: %v", err)
		}
	}
	wg.Wait()

	// In-flight requests keep their client; new config means a new one
	if client.restClient() == before {
		t.Error("Expected UpdateConfig to install a fresh http client")
	}
}

func TestLoginStoresTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "acc", RefreshToken: "ref"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.Login(context.Background(), "dana@example.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	access, refresh := client.Tokens()
	if access != "acc" || refresh != "ref" {
		t.Errorf("Expected tokens acc/ref, got %s/%s", access, refresh)
	}
}

func TestStreamChatDeliversChunks(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer is not a flusher")
			return
		}
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Message != "what is APR?" {
			t.Errorf("Unexpected message: %q", req.Message)
		}
		for _, chunk := range []string{"APR is ", "the annual ", "percentage rate."} {
			w.Write([]byte(chunk))
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	defer client.streamClient.CloseIdleConnections()

	contentChan, errorChan := client.StreamChat(context.Background(), "sess-1", "what is APR?")

	var full strings.Builder
	for chunk := range contentChan {
		full.WriteString(chunk)
	}
	if err := <-errorChan; err != nil {
		t.Fatalf("Unexpected stream error: %v", err)
	}
	if full.String() != "APR is the annual percentage rate." {
		t.Errorf("Unexpected concatenation: %q", full.String())
	}
}

func TestStreamChatSurfacesInBandError(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Write([]byte("thinking"))
		flusher.Flush()
		time.Sleep(5 * time.Millisecond)
		w.Write([]byte(`{"type":"error","message":"model overloaded"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	defer client.streamClient.CloseIdleConnections()

	contentChan, errorChan := client.StreamChat(context.Background(), "sess-2", "hi")

	for range contentChan {
	}
	err := <-errorChan
	if err == nil {
		t.Fatal("Expected in-band error")
	}
	if err.Error() != "model overloaded" {
		t.Errorf("Expected 'model overloaded', got %q", err.Error())
	}
}
