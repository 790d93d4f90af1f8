package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/buildinfo"
	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/session"
	"github.com/sboosali/notegraph/pkg/storage"
)

const notes = "alice knows bob\nbob trusts carol\ncarol likes dave"

const parsed = `{
	"nodes": [{"name": "alice"}, {"name": "bob"}, {"name": "carol"}, {"name": "dave"}],
	"links": [
		{"source": 0, "target": 1, "name": "knows", "lineno": 0},
		{"source": 1, "target": 2, "name": "trusts", "lineno": 1},
		{"source": 2, "target": 3, "name": "likes", "lineno": 2}
	]
}`

type fixture struct {
	srv    *httptest.Server
	server *Server
	store  *storage.MemoryStore
	broken atomic.Bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: storage.NewMemoryStore()}

	parser := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.broken.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		switch r.URL.Path {
		case "/draw":
			io.WriteString(w, parsed)
		case "/query":
			io.WriteString(w, `{"results": ["alice", "bob"]}`)
		}
	}))
	t.Cleanup(parser.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: parser.URL, Attempts: 1, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	reg := session.NewRegistry(context.Background(), session.Config{Client: client, Width: 400, Height: 400}, time.Hour)
	f.server = New(Config{Sessions: reg, Store: f.store})
	f.srv = httptest.NewServer(f.server.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (f *fixture) createSession(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d", resp.StatusCode)
	}
	return decodeBody[map[string]string](t, resp)["id"]
}

func (f *fixture) drawn(t *testing.T) string {
	t.Helper()
	id := f.createSession(t)
	resp := f.do(t, http.MethodPost, "/api/sessions/"+id+"/draw", map[string]string{"notes": notes})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("draw status = %d", resp.StatusCode)
	}
	return id
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	got := decodeBody[healthResponse](t, resp)
	if got.Status != "ok" || got.Build != buildinfo.Get() {
		t.Errorf("healthz = %+v", got)
	}
}

func TestCreateSessionSetsCookie(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/api/sessions", nil)
	id := decodeBody[map[string]string](t, resp)["id"]

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == CookieName && c.Value == id {
			found = true
		}
	}
	if !found {
		t.Errorf("cookie %s=%s not set", CookieName, id)
	}
}

func TestCookieSessionReused(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/api/session", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for a known cookie", resp.StatusCode)
	}
	if got := decodeBody[map[string]string](t, resp)["id"]; got != id {
		t.Errorf("id = %q, want %q", got, id)
	}

	fresh := f.do(t, http.MethodGet, "/api/session", nil)
	if fresh.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201 without a cookie", fresh.StatusCode)
	}
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/api/sessions/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Code != errors.ErrCodeSessionNotFound {
		t.Errorf("code = %s", body.Code)
	}
}

func TestDraw(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	resp := f.do(t, http.MethodPost, "/api/sessions/"+id+"/draw", map[string]string{"notes": notes})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	st := decodeBody[stateResponse](t, resp)
	if st.Stats == nil || st.Stats.Nodes != 4 || st.Stats.Links != 3 {
		t.Errorf("stats = %+v", st.Stats)
	}
	if _, ok := st.Frame.Link("bob___trusts___carol"); !ok {
		t.Error("frame is missing a link")
	}

	saved, ok, err := f.store.Get(context.Background(), storage.SessionKey(id))
	if err != nil || !ok || saved != notes {
		t.Errorf("persisted notes = %q, %v, %v", saved, ok, err)
	}
}

func TestDrawFailureKeepsGraph(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)

	f.broken.Store(true)
	resp := f.do(t, http.MethodPost, "/api/sessions/"+id+"/draw", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	st := decodeBody[stateResponse](t, f.do(t, http.MethodGet, "/api/sessions/"+id, nil))
	if len(st.Frame.Nodes) != 4 {
		t.Errorf("nodes = %d after failed draw, want 4", len(st.Frame.Nodes))
	}
}

func TestHoverLinkSelectsLine(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)

	st := decodeBody[stateResponse](t, f.do(t, http.MethodPost, "/api/sessions/"+id+"/hover",
		map[string]string{"link": "bob___trusts___carol"}))
	if st.Show != "bob trusts carol" {
		t.Errorf("show = %q", st.Show)
	}
	if st.Caret.Start != 16 || st.Caret.End != 32 {
		t.Errorf("caret = %+v, want [16, 32)", st.Caret)
	}

	st = decodeBody[stateResponse](t, f.do(t, http.MethodPost, "/api/sessions/"+id+"/hover", map[string]string{}))
	if st.Show != "" || st.Caret.Start != 0 || st.Caret.End != 0 {
		t.Errorf("after leave show = %q caret = %+v", st.Show, st.Caret)
	}
}

func TestClickLinkIsSticky(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)
	base := "/api/sessions/" + id

	f.do(t, http.MethodPost, base+"/click", map[string]string{"link": "carol___likes___dave"})
	f.do(t, http.MethodPost, base+"/hover", map[string]string{"node": "alice"})
	st := decodeBody[stateResponse](t, f.do(t, http.MethodPost, base+"/hover", map[string]string{}))

	if st.Show != "carol likes dave" {
		t.Errorf("show = %q", st.Show)
	}
	if st.Caret.Start != 33 || st.Caret.End != 49 {
		t.Errorf("caret = %+v, want [33, 49)", st.Caret)
	}
}

func TestPinSurvivesRedraw(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)
	base := "/api/sessions/" + id

	resp := f.do(t, http.MethodPost, base+"/pin", map[string]any{"name": "bob", "pinned": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pin status = %d", resp.StatusCode)
	}

	st := decodeBody[stateResponse](t, f.do(t, http.MethodPost, base+"/draw", nil))
	bob, _ := st.Frame.Node("bob")
	if !bob.Pinned {
		t.Error("bob lost its pin across redraw")
	}

	st = decodeBody[stateResponse](t, f.do(t, http.MethodPost, base+"/pin", map[string]any{"name": "bob", "pinned": false}))
	if bob, _ := st.Frame.Node("bob"); bob.Pinned {
		t.Error("bob still pinned after unpin")
	}
}

func TestTickAppliesPositions(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)
	base := "/api/sessions/" + id

	// Move the focus far away so distortion is the identity.
	f.do(t, http.MethodPost, base+"/focus", map[string]float64{"x": -10000, "y": -10000})

	st := decodeBody[stateResponse](t, f.do(t, http.MethodPost, base+"/tick", map[string]any{
		"positions": []map[string]any{{"name": "alice", "x": 123, "y": 45}},
	}))
	alice, _ := st.Frame.Node("alice")
	if alice.X != 123 || alice.Y != 45 {
		t.Errorf("alice at (%v, %v), want (123, 45)", alice.X, alice.Y)
	}
	if alice.FontSize != 30 {
		t.Errorf("font size = %v, want 30 outside the lens", alice.FontSize)
	}
}

func TestFocus(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)
	st := decodeBody[stateResponse](t, f.do(t, http.MethodPost, "/api/sessions/"+id+"/focus", map[string]float64{"x": 5, "y": 6}))
	if st.Frame.Focus.X != 5 || st.Frame.Focus.Y != 6 {
		t.Errorf("focus = %+v", st.Frame.Focus)
	}
}

func TestLocate(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)

	resp := f.do(t, http.MethodGet, "/api/sessions/"+id+"/locate?line=1", nil)
	got := decodeBody[locateResponse](t, resp)
	if got.Text != "bob trusts carol" || got.Range.Start != 16 || got.Range.End != 32 {
		t.Errorf("locate = %+v", got)
	}

	resp = f.do(t, http.MethodGet, "/api/sessions/"+id+"/locate?line=9", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeBody[errorResponse](t, resp); body.Code != errors.ErrCodeOutOfRange {
		t.Errorf("code = %s", body.Code)
	}
}

func TestRangesCountUTF16(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)
	base := "/api/sessions/" + id

	f.do(t, http.MethodPut, base+"/notes", map[string]string{"notes": "café knows bob\nbob trusts carol\ncarol likes dave"})

	got := decodeBody[locateResponse](t, f.do(t, http.MethodGet, base+"/locate?line=1", nil))
	if got.Text != "bob trusts carol" || got.Range.Start != 15 || got.Range.End != 31 {
		t.Errorf("locate = %+v, want [15, 31)", got)
	}

	f.do(t, http.MethodPost, base+"/draw", nil)
	st := decodeBody[stateResponse](t, f.do(t, http.MethodPost, base+"/hover",
		map[string]string{"link": "bob___trusts___carol"}))
	units := utf16.Encode([]rune(st.Notes))
	if sel := string(utf16.Decode(units[st.Caret.Start:st.Caret.End])); sel != "bob trusts carol" {
		t.Errorf("caret %+v selects %q in the browser buffer", st.Caret, sel)
	}
}

func TestRenderSVGCancelled(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/render.svg", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("rendered a snapshot for a cancelled request")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q, want a JSON error", ct)
	}
}

func TestQuery(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)
	resp := f.do(t, http.MethodPost, "/api/sessions/"+id+"/query", map[string]string{"query": "who"})
	if got := decodeBody[map[string]string](t, resp)["results"]; got != "alice\nbob" {
		t.Errorf("results = %q", got)
	}
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)
	base := "/api/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "InvalidJSON", method: http.MethodPost, path: base + "/hover", body: "{", status: 400},
		{name: "UnknownField", method: http.MethodPost, path: base + "/focus", body: `{"z": 1}`, status: 400},
		{name: "UnknownNode", method: http.MethodPost, path: base + "/pin", body: `{"name": "zed", "pinned": true}`, status: 404},
		{name: "UnknownLink", method: http.MethodPost, path: base + "/click", body: `{"link": "a___b___c"}`, status: 404},
		{name: "EmptyClick", method: http.MethodPost, path: base + "/click", body: `{}`, status: 400},
		{name: "MissingNotes", method: http.MethodPut, path: base + "/notes", body: `{}`, status: 400},
		{name: "BadLine", method: http.MethodGet, path: base + "/locate?line=x", status: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, f.srv.URL+tt.path, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestNotesAndDelete(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)
	base := "/api/sessions/" + id

	st := decodeBody[stateResponse](t, f.do(t, http.MethodPut, base+"/notes", map[string]string{"notes": "x knows y"}))
	if st.Notes != "x knows y" {
		t.Errorf("notes = %q", st.Notes)
	}

	if resp := f.do(t, http.MethodDelete, base, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if _, ok, _ := f.store.Get(context.Background(), storage.SessionKey(id)); ok {
		t.Error("notes kept after session delete")
	}
	if resp := f.do(t, http.MethodGet, base, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d", resp.StatusCode)
	}
}

func TestRenderSVG(t *testing.T) {
	f := newFixture(t)
	id := f.drawn(t)
	resp := f.do(t, http.MethodGet, "/api/sessions/"+id+"/render.svg", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content-type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("<svg")) {
		t.Error("response is not an SVG")
	}
}
