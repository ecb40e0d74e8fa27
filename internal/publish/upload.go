package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
)

// Uploader pushes release artifacts to an HTTP registry.
type Uploader struct {
	url    string
	token  string
	client *http.Client
}

// NewUploader creates an uploader for the given registry endpoint.
func NewUploader(url, token string) *Uploader {
	return &Uploader{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Upload sends one artifact as a multipart POST. Failures are retryable
// network errors so the pipeline's retry policy applies.
func (u *Uploader) Upload(ctx context.Context, path, project, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return serrors.PublishError("upload", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("project", project); err != nil {
		return serrors.PublishError("upload", err)
	}
	if err := mw.WriteField("version", version); err != nil {
		return serrors.PublishError("upload", err)
	}
	part, err := mw.CreateFormFile("artifact", filepath.Base(path))
	if err != nil {
		return serrors.PublishError("upload", err)
	}
	if _, err := part.Write(data); err != nil {
		return serrors.PublishError("upload", err)
	}
	if err := mw.Close(); err != nil {
		return serrors.PublishError("upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, &body)
	if err != nil {
		return serrors.PublishError("upload", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return serrors.UploadFailed(u.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return serrors.UploadFailed(u.url,
			fmt.Errorf("registry returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg)))
	}
	return nil
}
