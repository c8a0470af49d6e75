package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

// UploadCSV sends the file as multipart form-data together with the
// field-to-header mapping.
func (c *Client) UploadCSV(ctx context.Context, filename string, file io.Reader, mapping map[string]string) (models.ImportSummary, error) {
	var summary models.ImportSummary

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return summary, fmt.Errorf("encode mapping: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return summary, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return summary, fmt.Errorf("copy csv: %w", err)
	}
	if err := w.WriteField("mapping", string(mappingJSON)); err != nil {
		return summary, fmt.Errorf("write mapping: %w", err)
	}
	if err := w.Close(); err != nil {
		return summary, fmt.Errorf("close multipart: %w", err)
	}

	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/inventory/upload/csv",
		raw:         &buf,
		contentType: w.FormDataContentType(),
		auth:        authRequired,
	}, &summary)
	return summary, err
}

func (c *Client) UploadHTTP(ctx context.Context, req transport.HTTPUploadRequest) (models.ImportSummary, error) {
	var summary models.ImportSummary
	err := c.do(ctx, request{method: http.MethodPost, path: "/inventory/upload/http", body: req, auth: authRequired}, &summary)
	return summary, err
}

func (c *Client) UploadFTP(ctx context.Context, req transport.FTPUploadRequest) (models.ImportSummary, error) {
	var summary models.ImportSummary
	err := c.do(ctx, request{method: http.MethodPost, path: "/inventory/upload/ftp", body: req, auth: authRequired}, &summary)
	return summary, err
}

func (c *Client) PreviewHTTPHeaders(ctx context.Context, src transport.HTTPSourceRequest) ([]string, error) {
	var resp transport.HeaderPreviewResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/inventory/preview/http", body: src, auth: authRequired}, &resp)
	return resp.Headers, err
}

func (c *Client) PreviewFTPHeaders(ctx context.Context, src transport.FTPSourceRequest) ([]string, error) {
	var resp transport.HeaderPreviewResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/inventory/preview/ftp", body: src, auth: authRequired}, &resp)
	return resp.Headers, err
}
