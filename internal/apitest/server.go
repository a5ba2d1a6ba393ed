// Package apitest runs an in-process stand-in for the remote page/box store.
// State lives in a throwaway SQLite database so tests observe exactly what was
// persisted by each request.
package apitest

import (
        "bytes"
        "context"
        "database/sql"
        "encoding/json"
        "errors"
        "fmt"
        "io"
        "net/http"
        "net/http/httptest"
        "path/filepath"
        "strconv"
        "strings"
        "sync"
        "testing"

        "mondrian-cli/internal/model"

        _ "modernc.org/sqlite"
)

// Request is a recorded call, in arrival order.
type Request struct {
        Method string
        Path   string
        Body   string
}

type failure struct {
        method string
        path   string
        code   int
        body   string
}

type Server struct {
        URL string

        ts *httptest.Server
        db *sql.DB

        mu       sync.Mutex
        requests []Request
        failures []failure
}

// New starts a server and registers cleanup on t.
func New(t testing.TB) *Server {
        t.Helper()
        ctx := context.Background()
        db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "store.sqlite"))
        if err != nil {
                t.Fatalf("open sqlite: %v", err)
        }
        // One connection keeps requests strictly serialized.
        db.SetMaxOpenConns(1)
        if err := migrate(ctx, db); err != nil {
                _ = db.Close()
                t.Fatalf("migrate sqlite: %v", err)
        }

        s := &Server{db: db}
        mux := http.NewServeMux()
        mux.HandleFunc("GET /pages/", s.handleGetPage)
        mux.HandleFunc("POST /pages", s.handleCreatePage)
        mux.HandleFunc("POST /boxes", s.handleCreateBox)
        mux.HandleFunc("PUT /boxes", s.handleUpdateBoxes)
        mux.HandleFunc("PUT /boxes/{id}", s.handleUpdateBox)
        mux.HandleFunc("DELETE /boxes/{id}", s.handleDeleteBox)

        s.ts = httptest.NewServer(s.record(mux))
        s.URL = s.ts.URL
        t.Cleanup(func() {
                s.ts.Close()
                _ = db.Close()
        })
        return s
}

func migrate(ctx context.Context, db *sql.DB) error {
        stmts := []string{
                "PRAGMA foreign_keys=ON;",
                "PRAGMA busy_timeout=5000;",
                `CREATE TABLE IF NOT EXISTS pages (
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        name TEXT NOT NULL UNIQUE
                );`,
                `CREATE TABLE IF NOT EXISTS boxes (
                        id INTEGER PRIMARY KEY AUTOINCREMENT,
                        page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
                        content TEXT NOT NULL,
                        position INTEGER NOT NULL
                );`,
                `CREATE INDEX IF NOT EXISTS idx_boxes_page ON boxes(page_id, position);`,
        }
        for _, stmt := range stmts {
                if _, err := db.ExecContext(ctx, stmt); err != nil {
                        return err
                }
        }
        return nil
}

// Fail makes the next request matching method and path (exact, without query)
// answer with code. Injected failures are consumed once, in order.
func (s *Server) Fail(method, path string, code int) {
        s.mu.Lock()
        defer s.mu.Unlock()
        s.failures = append(s.failures, failure{method: method, path: path, code: code, body: `{"error":"injected failure"}`})
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
        s.mu.Lock()
        defer s.mu.Unlock()
        out := make([]Request, len(s.requests))
        copy(out, s.requests)
        return out
}

// RequestsMatching returns recorded calls for method and path.
func (s *Server) RequestsMatching(method, path string) []Request {
        var out []Request
        for _, r := range s.Requests() {
                if r.Method == method && r.Path == path {
                        out = append(out, r)
                }
        }
        return out
}

func (s *Server) ResetRequests() {
        s.mu.Lock()
        s.requests = nil
        s.mu.Unlock()
}

// SeedPage creates a page whose boxes have the given contents at positions 1..N.
func (s *Server) SeedPage(t testing.TB, name string, contents ...string) model.Page {
        t.Helper()
        ctx := context.Background()
        res, err := s.db.ExecContext(ctx, `INSERT INTO pages(name) VALUES(?)`, name)
        if err != nil {
                t.Fatalf("seed page %q: %v", name, err)
        }
        id, _ := res.LastInsertId()
        for i, c := range contents {
                if _, err := s.db.ExecContext(ctx, `INSERT INTO boxes(page_id, content, position) VALUES(?, ?, ?)`, id, c, i+1); err != nil {
                        t.Fatalf("seed box: %v", err)
                }
        }
        p, ok, err := s.loadPage(ctx, name)
        if err != nil || !ok {
                t.Fatalf("reload seeded page %q: ok=%v err=%v", name, ok, err)
        }
        return p
}

// Page returns the persisted page, boxes ordered by position.
func (s *Server) Page(t testing.TB, name string) (model.Page, bool) {
        t.Helper()
        p, ok, err := s.loadPage(context.Background(), name)
        if err != nil {
                t.Fatalf("load page %q: %v", name, err)
        }
        return p, ok
}

func (s *Server) record(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
                var body []byte
                if r.Body != nil {
                        b, err := io.ReadAll(r.Body)
                        if err != nil {
                                writeError(w, http.StatusBadRequest, "read body")
                                return
                        }
                        body = b
                        r.Body = io.NopCloser(bytes.NewReader(b))
                }

                s.mu.Lock()
                s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
                var injected *failure
                for i, f := range s.failures {
                        if f.method == r.Method && f.path == r.URL.Path {
                                ff := f
                                injected = &ff
                                s.failures = append(s.failures[:i], s.failures[i+1:]...)
                                break
                        }
                }
                s.mu.Unlock()

                if injected != nil {
                        w.Header().Set("Content-Type", "application/json")
                        w.WriteHeader(injected.code)
                        _, _ = w.Write([]byte(injected.body))
                        return
                }
                next.ServeHTTP(w, r)
        })
}

func writeJSON(w http.ResponseWriter, code int, v any) {
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(code)
        _ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
        writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) loadPage(ctx context.Context, name string) (model.Page, bool, error) {
        var p model.Page
        err := s.db.QueryRowContext(ctx, `SELECT id, name FROM pages WHERE name = ?`, name).Scan(&p.ID, &p.Name)
        if errors.Is(err, sql.ErrNoRows) {
                return model.Page{}, false, nil
        }
        if err != nil {
                return model.Page{}, false, err
        }
        rows, err := s.db.QueryContext(ctx, `SELECT id, content, position, page_id FROM boxes WHERE page_id = ? ORDER BY position, id`, p.ID)
        if err != nil {
                return model.Page{}, false, err
        }
        defer rows.Close()
        p.Boxes = []model.Box{}
        for rows.Next() {
                var b model.Box
                if err := rows.Scan(&b.ID, &b.Content, &b.Position, &b.PageID); err != nil {
                        return model.Page{}, false, err
                }
                p.Boxes = append(p.Boxes, b)
        }
        return p, true, rows.Err()
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
        name := r.URL.Query().Get("name")
        p, ok, err := s.loadPage(r.Context(), name)
        if err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        }
        if !ok {
                writeError(w, http.StatusNotFound, "page not found")
                return
        }
        writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
        var in model.NewPage
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
                writeError(w, http.StatusBadRequest, "invalid json")
                return
        }
        name := strings.TrimSpace(in.Name)
        if name == "" {
                writeError(w, http.StatusUnprocessableEntity, "Page name is required")
                return
        }
        if _, ok, err := s.loadPage(r.Context(), name); err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        } else if ok {
                // The store reports validation failures in-band.
                writeError(w, http.StatusOK, "Page already exists")
                return
        }
        res, err := s.db.ExecContext(r.Context(), `INSERT INTO pages(name) VALUES(?)`, name)
        if err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        }
        id, _ := res.LastInsertId()
        writeJSON(w, http.StatusOK, model.Page{ID: int(id), Name: name, Boxes: []model.Box{}})
}

func (s *Server) handleCreateBox(w http.ResponseWriter, r *http.Request) {
        var in model.NewBox
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
                writeError(w, http.StatusBadRequest, "invalid json")
                return
        }
        res, err := s.db.ExecContext(r.Context(), `INSERT INTO boxes(page_id, content, position) VALUES(?, ?, ?)`, in.PageID, in.Content, in.Position)
        if err != nil {
                writeError(w, http.StatusBadRequest, err.Error())
                return
        }
        id, _ := res.LastInsertId()
        writeJSON(w, http.StatusOK, model.Box{ID: int(id), Content: in.Content, Position: in.Position, PageID: in.PageID})
}

func (s *Server) handleUpdateBox(w http.ResponseWriter, r *http.Request) {
        id, err := strconv.Atoi(r.PathValue("id"))
        if err != nil {
                writeError(w, http.StatusBadRequest, "invalid box id")
                return
        }
        var in model.Box
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
                writeError(w, http.StatusBadRequest, "invalid json")
                return
        }
        n, err := s.updateBox(r.Context(), s.db, id, in)
        if err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        }
        if n == 0 {
                writeError(w, http.StatusNotFound, "box not found")
                return
        }
        writeJSON(w, http.StatusOK, []int{1})
}

type execer interface {
        ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Server) updateBox(ctx context.Context, db execer, id int, b model.Box) (int64, error) {
        res, err := db.ExecContext(ctx, `UPDATE boxes SET content = ?, position = ? WHERE id = ?`, b.Content, b.Position, id)
        if err != nil {
                return 0, err
        }
        return res.RowsAffected()
}

func (s *Server) handleUpdateBoxes(w http.ResponseWriter, r *http.Request) {
        var in []model.Box
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
                writeError(w, http.StatusBadRequest, "invalid json")
                return
        }
        tx, err := s.db.BeginTx(r.Context(), nil)
        if err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        }
        defer func() { _ = tx.Rollback() }()
        for _, b := range in {
                if _, err := s.updateBox(r.Context(), tx, b.ID, b); err != nil {
                        writeError(w, http.StatusInternalServerError, fmt.Sprintf("box %d: %v", b.ID, err))
                        return
                }
        }
        if err := tx.Commit(); err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        }
        writeJSON(w, http.StatusOK, map[string]int{"updated": len(in)})
}

func (s *Server) handleDeleteBox(w http.ResponseWriter, r *http.Request) {
        id, err := strconv.Atoi(r.PathValue("id"))
        if err != nil {
                writeError(w, http.StatusBadRequest, "invalid box id")
                return
        }
        res, err := s.db.ExecContext(r.Context(), `DELETE FROM boxes WHERE id = ?`, id)
        if err != nil {
                writeError(w, http.StatusInternalServerError, err.Error())
                return
        }
        if n, _ := res.RowsAffected(); n == 0 {
                writeError(w, http.StatusNotFound, "box not found")
                return
        }
        w.WriteHeader(http.StatusNoContent)
}
