package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"social-content/cmd/api/trace"
	"social-content/logger"
)

// ErrUpstream 는 다른 서비스가 2xx 가 아닌 응답을 돌려준 경우다.
var ErrUpstream = errors.New("upstream service error")

// tracingRoundTripper 는 모든 아웃바운드 호출에 요청/span id 를 싣고 결과를 로깅한다.
type tracingRoundTripper struct {
	inner http.RoundTripper
	lg    logger.Logger
}

func (t *tracingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID, spanID := trace.NextSpanID(req.Context())
	req.Header.Set(trace.HeaderRequestID, requestID)
	req.Header.Set(trace.HeaderSpanID, spanID)

	resp, err := t.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"duration":   time.Since(start).String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields(t.lg, "httpclient request failed", fields)
		return nil, err
	}
	fields["status"] = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest {
		logger.WarnWithFields(t.lg, "httpclient request rejected", fields)
	} else {
		t.lg.Debugf("httpclient %s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return resp, nil
}

// Config 는 HTTP 클라이언트 공통 설정이다. Timeout 이 0 이면 10초를 쓴다.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 는 baseURL 에 붙는 JSON API 호출을 담당한다.
type Client struct {
	http    *http.Client
	baseURL string
}

func New(cfg Config, lg logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: &tracingRoundTripper{inner: http.DefaultTransport, lg: lg},
		},
		baseURL: cfg.BaseURL,
	}
}

// GetJSON 은 GET 요청 후 응답 바디를 out 으로 디코딩한다.
// relPath 에 쿼리를 넣으면 path.Join 이 망가뜨리므로 query 인자로만 받는다.
func (c *Client) GetJSON(ctx context.Context, relPath string, query url.Values, out any) error {
	if strings.Contains(relPath, "?") {
		return fmt.Errorf("httpclient: relPath must not contain query string: %s", relPath)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path.Join(u.Path, relPath)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: GET %s: status %d: %s", ErrUpstream, relPath, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", relPath, err)
	}
	return nil
}
