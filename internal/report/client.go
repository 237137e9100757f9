package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/attrition/internal/domain/views"
)

const maxResponseBytes = 16 << 20

// HTTPSource reads views from a running dashboard server.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for the server at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Views fetches GET /api/views for department.
func (s *HTTPSource) Views(ctx context.Context, department string) (views.Views, error) {
	q := url.Values{}
	if department != "" {
		q.Set("department", department)
	}
	var v views.Views
	if err := s.getJSON(ctx, "/api/views", q, &v); err != nil {
		return views.Views{}, err
	}
	return v, nil
}

// Departments fetches GET /api/departments.
func (s *HTTPSource) Departments(ctx context.Context) ([]string, error) {
	var body struct {
		Departments []string `json:"departments"`
	}
	if err := s.getJSON(ctx, "/api/departments", nil, &body); err != nil {
		return nil, err
	}
	return body.Departments, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	target := s.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%w: %d %s: %s", ErrServer, resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: %d %s", ErrServer, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrResponse, path, err)
	}
	return nil
}
