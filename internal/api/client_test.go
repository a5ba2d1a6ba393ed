package api_test

import (
        "context"
        "encoding/json"
        "errors"
        "net/http"
        "net/http/httptest"
        "testing"

        "mondrian-cli/internal/api"
        "mondrian-cli/internal/apitest"
        "mondrian-cli/internal/model"

        "github.com/stretchr/testify/assert"
        "github.com/stretchr/testify/require"
)

func newClient(t *testing.T, srv *apitest.Server) *api.Client {
        t.Helper()
        c, err := api.New(srv.URL)
        require.NoError(t, err)
        return c
}

func TestNew(t *testing.T) {
        t.Run("Empty Base URL", func(t *testing.T) {
                c, err := api.New("  ")
                assert.Nil(t, c)
                assert.ErrorIs(t, err, api.ErrEmptyBaseURL)
        })

        t.Run("Trailing Slash Trimmed", func(t *testing.T) {
                c, err := api.New("http://example.test/")
                require.NoError(t, err)
                assert.Equal(t, "http://example.test", c.BaseURL())
        })
}

func TestGetPage(t *testing.T) {
        srv := apitest.New(t)
        seeded := srv.SeedPage(t, "home", "first", "second")
        c := newClient(t, srv)

        t.Run("Existing Page", func(t *testing.T) {
                p, err := c.GetPage(context.Background(), "home")
                require.NoError(t, err)
                assert.Equal(t, seeded.ID, p.ID)
                assert.Equal(t, "home", p.Name)
                require.Len(t, p.Boxes, 2)
                assert.Equal(t, "first", p.Boxes[0].Content)
                assert.Equal(t, seeded.ID, p.Boxes[0].PageID)
        })

        t.Run("Missing Page", func(t *testing.T) {
                _, err := c.GetPage(context.Background(), "nope")
                var se *api.StatusError
                require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
                assert.Equal(t, http.StatusNotFound, se.Code)
        })

        t.Run("Name Is Query Escaped", func(t *testing.T) {
                srv.SeedPage(t, "a b&c")
                p, err := c.GetPage(context.Background(), "a b&c")
                require.NoError(t, err)
                assert.Equal(t, "a b&c", p.Name)
        })
}

func TestGetPage_NullBodyIsNotFound(t *testing.T) {
        ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
                w.Header().Set("Content-Type", "application/json")
                _, _ = w.Write([]byte("null"))
        }))
        defer ts.Close()

        c, err := api.New(ts.URL)
        require.NoError(t, err)
        _, err = c.GetPage(context.Background(), "home")
        var se *api.StatusError
        require.ErrorAs(t, err, &se)
        assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestCreatePage(t *testing.T) {
        srv := apitest.New(t)
        c := newClient(t, srv)
        ctx := context.Background()

        resp, err := c.CreatePage(ctx, "notes")
        require.NoError(t, err)
        assert.Empty(t, resp.Error)
        assert.Equal(t, "notes", resp.Name)
        assert.NotZero(t, resp.ID)

        t.Run("In-Band Error", func(t *testing.T) {
                resp, err := c.CreatePage(ctx, "notes")
                require.NoError(t, err)
                assert.Equal(t, "Page already exists", resp.Error)
        })

        t.Run("Error With Failure Status", func(t *testing.T) {
                resp, err := c.CreatePage(ctx, "")
                require.NoError(t, err)
                assert.Equal(t, "Page name is required", resp.Error)
        })
}

func TestBoxWrites(t *testing.T) {
        srv := apitest.New(t)
        page := srv.SeedPage(t, "home", "a", "b")
        c := newClient(t, srv)
        ctx := context.Background()

        created, err := c.CreateBox(ctx, model.NewBox{Content: "", Position: 1, PageID: page.ID})
        require.NoError(t, err)
        assert.NotZero(t, created.ID)
        assert.Equal(t, page.ID, created.PageID)

        reqs := srv.RequestsMatching(http.MethodPost, "/boxes")
        require.Len(t, reqs, 1)
        var body map[string]any
        require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
        assert.Equal(t, map[string]any{"content": "", "position": float64(1), "PageId": float64(page.ID)}, body)

        created.Content = "hello"
        require.NoError(t, c.UpdateBox(ctx, created))

        boxes := []model.Box{created, page.Boxes[0], page.Boxes[1]}
        for i := range boxes {
                boxes[i].Position = i + 1
        }
        require.NoError(t, c.UpdateBoxes(ctx, boxes))

        got, ok := srv.Page(t, "home")
        require.True(t, ok)
        require.Len(t, got.Boxes, 3)
        assert.Equal(t, "hello", got.Boxes[0].Content)
        assert.Equal(t, "a", got.Boxes[1].Content)

        require.NoError(t, c.DeleteBox(ctx, created.ID))
        got, _ = srv.Page(t, "home")
        assert.Len(t, got.Boxes, 2)

        t.Run("Status Error", func(t *testing.T) {
                err := c.DeleteBox(ctx, created.ID)
                var se *api.StatusError
                require.ErrorAs(t, err, &se)
                assert.Equal(t, http.StatusNotFound, se.Code)
                assert.Contains(t, se.Error(), "DELETE /boxes/")
        })
}

func TestRequestHeaders(t *testing.T) {
        var seen http.Header
        ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
                seen = r.Header.Clone()
                w.WriteHeader(http.StatusOK)
        }))
        defer ts.Close()

        c, err := api.New(ts.URL)
        require.NoError(t, err)
        require.NoError(t, c.UpdateBoxes(context.Background(), nil))
        assert.Equal(t, "application/json", seen.Get("Content-Type"))
        assert.NotEmpty(t, seen.Get("X-Request-Id"))
}

func TestContextCancelled(t *testing.T) {
        srv := apitest.New(t)
        c := newClient(t, srv)
        ctx, cancel := context.WithCancel(context.Background())
        cancel()
        _, err := c.GetPage(ctx, "home")
        require.Error(t, err)
        assert.ErrorIs(t, err, context.Canceled)
}
