package live

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/gauge"
)

type testServer struct {
	srv   *Server
	http  *httptest.Server
	sched *gauge.ManualScheduler
	t0    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched := gauge.NewManualScheduler()

	srv, err := NewServer(discardLogger(), gauge.DefaultConfig(), 0, Config{},
		gauge.WithScheduler(sched),
		gauge.WithClock(func() time.Time { return t0 }),
	)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		cancel()
		_ = srv.Close()
	})
	return &testServer{srv: srv, http: hs, sched: sched, t0: t0}
}

// finish runs the scheduled frame callback at the end of the transition.
func (ts *testServer) finish() int {
	return ts.sched.Step(ts.t0.Add(time.Second))
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.http.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.http.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestServeSVG(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/gauge.svg", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(body, []byte(`id="needle-vizBox"`)) {
		t.Errorf("body lacks needle group:\n%s", body)
	}
}

func TestServeIndex(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"<svg", `id="circles-vizBox"`, "/ws", "set_value"} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("index lacks %q", want)
		}
	}

	if resp, _ := ts.do(t, http.MethodGet, "/nope", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", resp.StatusCode)
	}
}

func TestServePNG(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/gauge.png", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Errorf("bounds = %v, want 400x400", b)
	}
}

func TestPostValue(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/value", `{"value": 50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got UpdateResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != "Value" || got.Value != 50 {
		t.Errorf("response = %+v, want Value/50", got)
	}

	ts.finish()
	if f := ts.srv.Gauge().Frame(); !f.Done || f.Text != "50 %" {
		t.Errorf("frame = %+v, want done at 50 %%", f)
	}

	tests := []struct {
		name string
		body string
	}{
		{"not json", `fifty`},
		{"missing value", `{}`},
		{"unknown field", `{"value": 1, "speed": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := ts.do(t, http.MethodPost, "/value", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestConfigRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/config", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	var cfg gauge.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		t.Fatal(err)
	}
	if !cfg.Equal(gauge.DefaultConfig()) {
		t.Errorf("GET /config = %+v, want defaults", cfg)
	}

	resp, body = ts.do(t, http.MethodPut, "/config", `{"units": "rpm", "max_val": 8000, "tick_space_min_val": 100, "tick_space_maj_val": 1000}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", resp.StatusCode, body)
	}
	var got UpdateResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != "Relayout" {
		t.Errorf("kind = %q, want Relayout", got.Kind)
	}
	if units := ts.srv.Gauge().Config().Units; units != "rpm" {
		t.Errorf("units = %q, want rpm", units)
	}

	resp, _ = ts.do(t, http.MethodPut, "/config", `{"max_val": 0}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("empty domain status = %d, want 422", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodPut, "/config", `{"needle_colour": "red"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown key status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{gauge.ErrClosed, http.StatusServiceUnavailable},
		{&gauge.FieldError{Field: "max_val", Err: gauge.ErrEmptyDomain}, http.StatusUnprocessableEntity},
		{gauge.ErrTooManyTicks, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func dialWS(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readType reads messages until one of type typ arrives.
func readType(t *testing.T, conn *websocket.Conn, typ string) json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg.Data
		}
	}
}

func TestWebSocketStreamsFrames(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)

	var scene SceneData
	if err := json.Unmarshal(readType(t, conn, TypeScene), &scene); err != nil {
		t.Fatal(err)
	}
	if scene.ID != "vizBox" || !strings.Contains(scene.SVG, "<svg") {
		t.Errorf("scene = %+v", scene)
	}
	waitUntil(t, time.Second, func() bool { return ts.srv.Hub().Clients() == 1 }, "client not registered")

	if _, err := ts.srv.Gauge().SetValue(50); err != nil {
		t.Fatal(err)
	}
	if n := ts.finish(); n != 1 {
		t.Fatalf("Step ran %d callbacks, want 1", n)
	}

	var f FrameData
	if err := json.Unmarshal(readType(t, conn, TypeFrame), &f); err != nil {
		t.Fatal(err)
	}
	if !f.Done || f.Text != "50 %" || f.Transform != "rotate(140,200,200)" {
		t.Errorf("frame = %+v", f)
	}
}

func TestWebSocketRelayoutSendsScene(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)
	readType(t, conn, TypeScene)
	waitUntil(t, time.Second, func() bool { return ts.srv.Hub().Clients() == 1 }, "client not registered")

	cfg := gauge.DefaultConfig()
	cfg.Title = "Boost"
	if _, err := ts.srv.Gauge().SetConfig(cfg); err != nil {
		t.Fatal(err)
	}

	var scene SceneData
	if err := json.Unmarshal(readType(t, conn, TypeScene), &scene); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(scene.SVG, "Boost") {
		t.Error("relayout scene lacks the new title")
	}
}

func TestWebSocketSetValue(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)
	readType(t, conn, TypeScene)

	if err := conn.WriteJSON(map[string]any{"type": TypeSetValue, "data": map[string]any{"value": 70}}); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, time.Second, func() bool { return ts.srv.Gauge().Value() == 70 }, "set_value not applied")

	if err := conn.WriteJSON(map[string]any{"type": "spin"}); err != nil {
		t.Fatal(err)
	}
	var e errorResponse
	if err := json.Unmarshal(readType(t, conn, TypeError), &e); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.Error, "spin") {
		t.Errorf("error = %q, want it to name the type", e.Error)
	}
}
