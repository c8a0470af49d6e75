package upload

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

type Kind string

const (
	KindCSV  Kind = "csv"
	KindHTTP Kind = "http"
	KindFTP  Kind = "ftp"
)

var ErrNoHeaders = errors.New("no headers found")

// API is the backend surface used for previews and imports.
type API interface {
	PreviewHTTPHeaders(ctx context.Context, src transport.HTTPSourceRequest) ([]string, error)
	PreviewFTPHeaders(ctx context.Context, src transport.FTPSourceRequest) ([]string, error)
	UploadCSV(ctx context.Context, filename string, file io.Reader, mapping map[string]string) (models.ImportSummary, error)
	UploadHTTP(ctx context.Context, req transport.HTTPUploadRequest) (models.ImportSummary, error)
	UploadFTP(ctx context.Context, req transport.FTPUploadRequest) (models.ImportSummary, error)
}

// Source is where a bulk import reads its rows from.
type Source interface {
	Kind() Kind
	Describe() string
	headers(ctx context.Context, api API) ([]string, error)
	submit(ctx context.Context, api API, m Mapping) (models.ImportSummary, error)
}

// CSVSource is a file held by the client. Headers are read locally.
type CSVSource struct {
	Filename string
	Data     []byte
}

func OpenCSV(path string) (*CSVSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return &CSVSource{Filename: filepath.Base(path), Data: data}, nil
}

func (s *CSVSource) Kind() Kind       { return KindCSV }
func (s *CSVSource) Describe() string { return s.Filename }

func (s *CSVSource) headers(context.Context, API) ([]string, error) {
	return ReadCSVHeaders(bytes.NewReader(s.Data))
}

func (s *CSVSource) submit(ctx context.Context, api API, m Mapping) (models.ImportSummary, error) {
	return api.UploadCSV(ctx, s.Filename, bytes.NewReader(s.Data), m)
}

// ReadCSVHeaders returns the trimmed cells of the first record.
func ReadCSVHeaders(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeaders
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\ufeff")
	}
	return cleanHeaders(first)
}

type HTTPSource struct {
	transport.HTTPSourceRequest
}

func (s *HTTPSource) Kind() Kind       { return KindHTTP }
func (s *HTTPSource) Describe() string { return s.URL }

func (s *HTTPSource) headers(ctx context.Context, api API) ([]string, error) {
	if strings.TrimSpace(s.URL) == "" {
		return nil, errors.New("source url is required")
	}
	h, err := api.PreviewHTTPHeaders(ctx, s.HTTPSourceRequest)
	if err != nil {
		return nil, err
	}
	return cleanHeaders(h)
}

func (s *HTTPSource) submit(ctx context.Context, api API, m Mapping) (models.ImportSummary, error) {
	return api.UploadHTTP(ctx, transport.HTTPUploadRequest{Source: s.HTTPSourceRequest, Mapping: m})
}

type FTPSource struct {
	transport.FTPSourceRequest
}

func (s *FTPSource) Kind() Kind { return KindFTP }

func (s *FTPSource) Describe() string {
	port := s.Port
	if port == 0 {
		port = 21
	}
	return fmt.Sprintf("ftp://%s:%d/%s", s.Host, port, strings.TrimPrefix(s.Path, "/"))
}

func (s *FTPSource) headers(ctx context.Context, api API) ([]string, error) {
	if strings.TrimSpace(s.Host) == "" || strings.TrimSpace(s.Path) == "" {
		return nil, errors.New("ftp host and path are required")
	}
	h, err := api.PreviewFTPHeaders(ctx, s.FTPSourceRequest)
	if err != nil {
		return nil, err
	}
	return cleanHeaders(h)
}

func (s *FTPSource) submit(ctx context.Context, api API, m Mapping) (models.ImportSummary, error) {
	return api.UploadFTP(ctx, transport.FTPUploadRequest{Source: s.FTPSourceRequest, Mapping: m})
}

func cleanHeaders(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, h := range in {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoHeaders
	}
	return out, nil
}
