package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/repositories"
	"github.com/desertthunder/chordx/internal/shared"
	tu "github.com/desertthunder/chordx/internal/testing"
	"golang.org/x/time/rate"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func newLibrary(t *testing.T) *repositories.SongRepository {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repositories.NewSongRepository(db)
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware runs in the order added", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("outer"), mark("inner"))
		router.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		do(t, router, http.MethodGet, "/ping", "")
		if strings.Join(order, ",") != "outer,inner,handler" {
			t.Errorf("order = %v", order)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodPost, "/ping", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		if rec := do(t, router, http.MethodGet, "/ping", ""); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("Routes are sorted", func(t *testing.T) {
		router := NewBasicRouter()
		noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		router.Handle(http.MethodPost, "/b", noop)
		router.Handle(http.MethodGet, "/a", noop)
		if got := strings.Join(router.Routes(), ","); got != "GET /a,POST /b" {
			t.Errorf("Routes = %s", got)
		}
	})

	t.Run("Handler registers every route", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewChartHandler(Options{Logger: quietLogger(), DefaultFormat: formats.FormatFreeShow}))
		for _, path := range []string{"/detect", "/convert", "/transpose", "/key", "/chart"} {
			if rec := do(t, router, http.MethodPost, path, ""); rec.Code != http.StatusBadRequest {
				t.Errorf("POST %s with no body = %d, want 400", path, rec.Code)
			}
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })

	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		missing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

		do(t, Logging(logger)(missing), http.MethodGet, "/missing", "")
		out := buf.String()
		if !strings.Contains(out, "path=/missing") || !strings.Contains(out, "status=404") {
			t.Errorf("log = %q", out)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		rec := do(t, Recover(quietLogger())(boom), http.MethodGet, "/", "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if body := decode[errorBody](t, rec); body.Error != "internal error" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("RateLimit", func(t *testing.T) {
		h := RateLimit(rate.NewLimiter(rate.Every(time.Hour), 1))(ok)
		if rec := do(t, h, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
			t.Fatalf("first request = %d", rec.Code)
		}
		rec := do(t, h, http.MethodGet, "/", "")
		if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
			t.Errorf("second request = %d", rec.Code)
		}
	})

	t.Run("LimitBody", func(t *testing.T) {
		router := NewRouter(Options{Logger: quietLogger(), MaxBodyBytes: 16}, nil)
		rec := do(t, router, http.MethodPost, "/convert", tu.UltimateGuitarChart)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})
}

func TestChartHandler(t *testing.T) {
	router := NewRouter(Options{Logger: quietLogger(), ChartWidth: 80}, nil)

	t.Run("health", func(t *testing.T) {
		if rec := do(t, router, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("index lists routes", func(t *testing.T) {
		routes := decode[map[string][]string](t, do(t, router, http.MethodGet, "/", ""))["routes"]
		if !slices.Contains(routes, "POST /convert") || slices.Contains(routes, "GET /songs") {
			t.Errorf("routes = %v", routes)
		}
		if rec := do(t, router, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
			t.Errorf("unknown path status = %d", rec.Code)
		}
	})

	t.Run("detect", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/detect?name=grace.txt", tu.UltimateGuitarChart)
		if got := decode[map[string]string](t, rec)["format"]; got != formats.FormatUltimateGuitar.String() {
			t.Errorf("format = %q", got)
		}
	})

	t.Run("convert to the default format", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/convert?name=grace.txt", tu.UltimateGuitarChart)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Chart-Format") != formats.FormatFreeShow.String() {
			t.Errorf("format header = %q", rec.Header().Get("X-Chart-Format"))
		}
		if !strings.Contains(rec.Body.String(), "[G]") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("convert to OpenLyrics with transposition", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/convert?name=grace.txt&to=openlyrics&transpose=%2B2", tu.UltimateGuitarChart)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml") {
			t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
		}
		song, err := formats.ParseOpenLyrics(rec.Body.Bytes())
		if err != nil {
			t.Fatalf("output is not OpenLyrics: %v", err)
		}
		if chords := song.ChordTexts(); len(chords) == 0 || chords[0] != "A" {
			t.Errorf("chords = %v", chords)
		}
	})

	t.Run("transpose keeps the input format", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/transpose?by=A", tu.UltimateGuitarChart)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		song, format, err := formats.Import("out.txt", rec.Body.Bytes())
		if err != nil || format != formats.FormatUltimateGuitar {
			t.Fatalf("format = %v, err = %v", format, err)
		}
		if chords := song.ChordTexts(); chords[0] != "A" {
			t.Errorf("chords = %v", chords)
		}
	})

	t.Run("key", func(t *testing.T) {
		resp := decode[KeyResponse](t, do(t, router, http.MethodPost, "/key", tu.UltimateGuitarChart))
		if resp.Key != "G" || resp.Chords != 6 {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("chart", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/chart?name=grace.txt&width=40", tu.UltimateGuitarChart)
		if !strings.Contains(rec.Body.String(), "Amazing grace how sweet") {
			t.Errorf("chart = %s", rec.Body.String())
		}

		rec = do(t, router, http.MethodPost, "/chart?name=grace.txt&markdown=true", tu.UltimateGuitarChart)
		if !strings.HasPrefix(rec.Body.String(), "#") || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
			t.Errorf("markdown = %s", rec.Body.String())
		}
	})

	t.Run("bad requests", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			target string
			body   string
			status int
		}{
			{"empty body", http.MethodPost, "/convert", "", http.StatusBadRequest},
			{"unknown format", http.MethodPost, "/convert?to=pdf", tu.UltimateGuitarChart, http.StatusBadRequest},
			{"unsupported format", http.MethodPost, "/convert?to=openlp", tu.UltimateGuitarChart, http.StatusBadRequest},
			{"malformed show", http.MethodPost, "/convert?name=x.show", `{"not": "an array"}`, http.StatusBadRequest},
			{"missing by", http.MethodPost, "/transpose", tu.UltimateGuitarChart, http.StatusBadRequest},
			{"bad by", http.MethodPost, "/transpose?by=up", tu.UltimateGuitarChart, http.StatusBadRequest},
			{"bad width", http.MethodPost, "/chart?width=wide", tu.UltimateGuitarChart, http.StatusBadRequest},
			{"wrong method", http.MethodGet, "/convert", "", http.StatusMethodNotAllowed},
			{"no library", http.MethodGet, "/songs", "", http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if rec := do(t, router, tt.method, tt.target, tt.body); rec.Code != tt.status {
					t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
				}
			})
		}
	})
}

func TestLibraryHandler(t *testing.T) {
	router := NewRouter(Options{Logger: quietLogger()}, newLibrary(t))

	t.Run("import", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/songs?name=grace.txt", tu.UltimateGuitarChart)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if s := decode[formatter.SongSummary](t, rec); s.Title != "grace" || s.Sequence != 1 || s.Key != "G" {
			t.Errorf("summary = %+v", s)
		}

		if rec := do(t, router, http.MethodPost, "/songs", tu.OpenLyricsChart); rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("import rejects", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			body   string
			status int
		}{
			{"duplicate", "/songs?name=grace.txt", tu.UltimateGuitarChart, http.StatusConflict},
			{"untitled text chart", "/songs", tu.FreeShowChart, http.StatusBadRequest},
			{"empty chart", "/songs?name=blank.txt", "\n\n", http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if rec := do(t, router, http.MethodPost, tt.target, tt.body); rec.Code != tt.status {
					t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
				}
			})
		}
	})

	t.Run("list and search", func(t *testing.T) {
		songs := decode[[]formatter.SongSummary](t, do(t, router, http.MethodGet, "/songs", ""))
		if len(songs) != 2 {
			t.Fatalf("expected 2 songs, got %+v", songs)
		}

		songs = decode[[]formatter.SongSummary](t, do(t, router, http.MethodGet, "/songs?q=amazing", ""))
		if len(songs) != 1 || songs[0].Title != "Amazing Grace" {
			t.Errorf("search = %+v", songs)
		}

		if rec := do(t, router, http.MethodGet, "/songs?limit=many", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("bad limit status = %d", rec.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		song := decode[models.Song](t, do(t, router, http.MethodGet, "/songs/2", ""))
		if song.Title != "Amazing Grace" || len(song.Sections) != 2 {
			t.Errorf("song = %+v", song)
		}

		if rec := do(t, router, http.MethodGet, "/songs/99", ""); rec.Code != http.StatusNotFound {
			t.Errorf("missing song status = %d", rec.Code)
		}
	})

	t.Run("transpose and reset", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/songs/2/transpose?by=%2B2", "")
		if s := decode[formatter.SongSummary](t, rec); s.Key != "A" || s.Transpose != "+2" {
			t.Errorf("after transpose = %+v", s)
		}

		chart := do(t, router, http.MethodGet, "/songs/2/chart", "").Body.String()
		if !strings.Contains(chart, "Key: A") {
			t.Errorf("chart = %s", chart)
		}

		rec = do(t, router, http.MethodPost, "/songs/2/reset", "")
		if s := decode[formatter.SongSummary](t, rec); s.Key != "G" || s.Transpose != "" {
			t.Errorf("after reset = %+v", s)
		}

		if rec := do(t, router, http.MethodPost, "/songs/2/transpose", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("missing by status = %d", rec.Code)
		}
	})

	t.Run("export", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/songs/2/export?to=show", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Header().Get("Content-Disposition"), "amazing-grace.show") {
			t.Errorf("disposition = %q", rec.Header().Get("Content-Disposition"))
		}
		if _, err := formats.ParseShow(rec.Body.Bytes()); err != nil {
			t.Errorf("export is not a .show file: %v", err)
		}

		if rec := do(t, router, http.MethodGet, "/songs/2/export?to=pdf", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("bad format status = %d", rec.Code)
		}
	})
}

func TestListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", NewRouter(Options{Logger: quietLogger()}, nil), quietLogger(), ready)
	}()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("shutdown error: %v", err)
	}
}
