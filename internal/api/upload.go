package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"finchat/internal/config"
	"finchat/internal/logging"
)

// ValidateUpload checks a file against the upload policy before any bytes
// are sent.
func ValidateUpload(path string, policy config.UploadConfig) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("upload %q is a directory", path)
	}
	if !policy.ExtensionAllowed(info.Name()) {
		return fmt.Errorf("file type %q is not allowed", filepath.Ext(info.Name()))
	}
	if policy.MaxSizeBytes > 0 && info.Size() > policy.MaxSizeBytes {
		return fmt.Errorf("file is %d bytes, limit is %d", info.Size(), policy.MaxSizeBytes)
	}
	return nil
}

// Upload validates and sends a file as multipart form data. The upload uses
// the fixed-timeout client; it is not a streamed request.
func (c *Client) Upload(ctx context.Context, path string, policy config.UploadConfig) (*UploadResult, error) {
	if err := ValidateUpload(path, policy); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart: %w", err)
	}

	logging.Upload("Upload: file=%s size=%d", filepath.Base(path), body.Len())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/uploads"), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.restClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.decodeError(resp)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	logging.Upload("Upload: stored file_id=%s", result.FileID)
	return &result, nil
}
