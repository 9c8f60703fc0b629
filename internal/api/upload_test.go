package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finchat/internal/config"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func TestValidateUpload(t *testing.T) {
	policy := config.UploadConfig{
		AllowedExtensions: []string{".pdf", ".csv"},
		MaxSizeBytes:      16,
	}

	okPath := writeTempFile(t, "statement.pdf", "small")
	if err := ValidateUpload(okPath, policy); err != nil {
		t.Errorf("Expected pdf within limit to pass, got %v", err)
	}

	badExt := writeTempFile(t, "script.exe", "x")
	if err := ValidateUpload(badExt, policy); err == nil {
		t.Error("Expected disallowed extension to fail")
	}

	tooBig := writeTempFile(t, "big.csv", strings.Repeat("a", 64))
	if err := ValidateUpload(tooBig, policy); err == nil {
		t.Error("Expected oversized file to fail")
	}

	if err := ValidateUpload(filepath.Join(t.TempDir(), "missing.pdf"), policy); err == nil {
		t.Error("Expected missing file to fail")
	}
}

func TestUploadSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm failed: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile failed: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "budget.csv" {
			t.Errorf("Expected filename budget.csv, got %q", header.Filename)
		}
		json.NewEncoder(w).Encode(UploadResult{FileID: "f-1", Name: header.Filename, Size: header.Size})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	path := writeTempFile(t, "budget.csv", "month,spend\njan,120\n")

	result, err := client.Upload(context.Background(), path, config.UploadConfig{})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.FileID != "f-1" {
		t.Errorf("Expected file_id f-1, got %q", result.FileID)
	}
}

func TestUploadRejectedLocallyNeverHitsServer(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	path := writeTempFile(t, "malware.exe", "nope")

	_, err := client.Upload(context.Background(), path, config.UploadConfig{
		AllowedExtensions: []string{".pdf"},
	})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if calls != 0 {
		t.Errorf("Expected no server calls for locally rejected upload, got %d", calls)
	}
}
