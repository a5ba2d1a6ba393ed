package api

import (
        "bytes"
        "context"
        "encoding/json"
        "errors"
        "fmt"
        "io"
        "log/slog"
        "net/http"
        "net/url"
        "strconv"
        "strings"
        "time"

        "mondrian-cli/internal/model"

        "github.com/google/uuid"
)

const (
        DefaultBaseURL = "https://mondrian-api.herokuapp.com"
        DefaultTimeout = 15 * time.Second
)

// ErrEmptyBaseURL is returned by New when no base URL is configured.
var ErrEmptyBaseURL = errors.New("api base url is empty")

// StatusError reports a non-success HTTP response from the remote store.
type StatusError struct {
        Method string
        Path   string
        Code   int
        Body   string
}

func (e *StatusError) Error() string {
        body := strings.TrimSpace(e.Body)
        if len(body) > 200 {
                body = body[:200] + "…"
        }
        if body == "" {
                return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
        }
        return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Code, http.StatusText(e.Code), body)
}

// Store is the remote page/box store consumed by the page session.
type Store interface {
        GetPage(ctx context.Context, name string) (model.Page, error)
        CreatePage(ctx context.Context, name string) (model.CreatePageResponse, error)
        CreateBox(ctx context.Context, b model.NewBox) (model.Box, error)
        UpdateBox(ctx context.Context, b model.Box) error
        UpdateBoxes(ctx context.Context, boxes []model.Box) error
        DeleteBox(ctx context.Context, id int) error
}

// Client talks to the remote store over HTTP. There is no retry.
type Client struct {
        baseURL string
        http    *http.Client
        log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
        return func(c *Client) {
                if hc != nil {
                        c.http = hc
                }
        }
}

func WithLogger(l *slog.Logger) Option {
        return func(c *Client) {
                if l != nil {
                        c.log = l
                }
        }
}

func WithTimeout(d time.Duration) Option {
        return func(c *Client) {
                if d > 0 {
                        c.http.Timeout = d
                }
        }
}

func New(baseURL string, opts ...Option) (*Client, error) {
        baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
        if baseURL == "" {
                return nil, ErrEmptyBaseURL
        }
        if _, err := url.Parse(baseURL); err != nil {
                return nil, fmt.Errorf("parse api base url: %w", err)
        }
        c := &Client{
                baseURL: baseURL,
                http:    &http.Client{Timeout: DefaultTimeout},
                log:     slog.Default(),
        }
        for _, o := range opts {
                o(c)
        }
        return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// GetPage fetches a page by name, including its boxes.
func (c *Client) GetPage(ctx context.Context, name string) (model.Page, error) {
        var p model.Page
        path := "/pages/?name=" + url.QueryEscape(name)
        if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
                return model.Page{}, err
        }
        // An empty body or a null record means the store has no such page.
        if p.ID == 0 && p.Name == "" {
                return model.Page{}, &StatusError{Method: http.MethodGet, Path: path, Code: http.StatusNotFound}
        }
        return p, nil
}

// CreatePage asks the store to create a page. A validation failure is reported in
// the response's Error field rather than as an error, so callers can show it inline.
func (c *Client) CreatePage(ctx context.Context, name string) (model.CreatePageResponse, error) {
        var out model.CreatePageResponse
        err := c.do(ctx, http.MethodPost, "/pages", model.NewPage{Name: name}, &out)
        var se *StatusError
        if errors.As(err, &se) {
                // The store may pair {error} with a 4xx status.
                var body model.CreatePageResponse
                if json.Unmarshal([]byte(se.Body), &body) == nil && strings.TrimSpace(body.Error) != "" {
                        return body, nil
                }
        }
        if err != nil {
                return model.CreatePageResponse{}, err
        }
        return out, nil
}

func (c *Client) CreateBox(ctx context.Context, b model.NewBox) (model.Box, error) {
        var out model.Box
        if err := c.do(ctx, http.MethodPost, "/boxes", b, &out); err != nil {
                return model.Box{}, err
        }
        return out, nil
}

func (c *Client) UpdateBox(ctx context.Context, b model.Box) error {
        return c.do(ctx, http.MethodPut, "/boxes/"+strconv.Itoa(b.ID), b, nil)
}

// UpdateBoxes is the bulk update used to persist positions after renumbering.
func (c *Client) UpdateBoxes(ctx context.Context, boxes []model.Box) error {
        if boxes == nil {
                boxes = []model.Box{}
        }
        return c.do(ctx, http.MethodPut, "/boxes", boxes, nil)
}

func (c *Client) DeleteBox(ctx context.Context, id int) error {
        return c.do(ctx, http.MethodDelete, "/boxes/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
        var body io.Reader
        if in != nil {
                b, err := json.Marshal(in)
                if err != nil {
                        return fmt.Errorf("encode %s %s: %w", method, path, err)
                }
                body = bytes.NewReader(b)
        }
        req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
        if err != nil {
                return fmt.Errorf("build %s %s: %w", method, path, err)
        }
        reqID := uuid.NewString()
        req.Header.Set("Accept", "application/json")
        req.Header.Set("X-Request-Id", reqID)
        if in != nil {
                req.Header.Set("Content-Type", "application/json")
        }

        start := time.Now()
        resp, err := c.http.Do(req)
        if err != nil {
                c.log.Warn("api request failed", "method", method, "path", path, "request_id", reqID, "error", err)
                return fmt.Errorf("%s %s: %w", method, path, err)
        }
        defer resp.Body.Close()

        raw, err := io.ReadAll(resp.Body)
        c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode,
                "bytes", len(raw), "duration", time.Since(start), "request_id", reqID)
        if err != nil {
                return fmt.Errorf("read %s %s: %w", method, path, err)
        }
        if resp.StatusCode < 200 || resp.StatusCode > 299 {
                return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(raw)}
        }
        if out == nil || len(bytes.TrimSpace(raw)) == 0 {
                return nil
        }
        if err := json.Unmarshal(raw, out); err != nil {
                return fmt.Errorf("decode %s %s: %w", method, path, err)
        }
        return nil
}
