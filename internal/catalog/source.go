package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"routine-builder/internal/domain"
)

// Source yields the full read-only catalog.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// document is the wire shape of the static catalog collaborator.
type document struct {
	Products []domain.Product `json:"products"`
}

// FileSource loads the catalog document from a local JSON file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) (*FileSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog: file path must not be empty")
	}
	return &FileSource{Path: path}, nil
}

func (s *FileSource) ListProducts(_ context.Context) ([]domain.Product, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", s.Path, err)
	}
	return decodeDocument(raw)
}

// HTTPSource fetches the catalog document from a URL. Fetched once per call;
// callers decide whether to cache.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

type HTTPOption func(*HTTPSource)

func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.httpClient = httpClient
	}
}

func NewHTTPSource(url string, opts ...HTTPOption) (*HTTPSource, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("catalog: url must not be empty")
	}
	s := &HTTPSource{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: create request: %w", err)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", s.url, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: unexpected status %d from %s", res.StatusCode, s.url)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read response body: %w", err)
	}
	return decodeDocument(raw)
}

func decodeDocument(raw []byte) ([]domain.Product, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode document: %w", err)
	}
	if doc.Products == nil {
		return nil, errors.New("catalog: document missing products")
	}
	return doc.Products, nil
}
