// Package live serves a gauge over HTTP and streams its needle animation to
// browsers over a WebSocket.
//
// Routes:
//
//	GET  /           HTML page with the gauge inlined as SVG
//	GET  /gauge.svg  current scene as SVG
//	GET  /gauge.png  current scene as PNG
//	GET  /ws         WebSocket: "scene" and "frame" out, "set_value" in
//	POST /value      {"value": n}
//	GET  /config     current gauge config as JSON
//	PUT  /config     replace the gauge config (JSON, missing keys default)
//
// WebSocket messages are JSON envelopes {type, ts, data}. A client receives
// a "scene" message on connect and after every relayout, then one "frame"
// message per animation frame.
package live

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/gauge"
	_ "github.com/gogpu/gauge/raster" // png
	"github.com/gogpu/gauge/render"
	"github.com/gogpu/gauge/svg"
)

// Message types.
const (
	TypeScene    = "scene"
	TypeFrame    = "frame"
	TypeSetValue = "set_value"
	TypeError    = "error"
)

// maxBodySize bounds request bodies of POST /value and PUT /config.
const maxBodySize = 1 << 20

// envelope is the wire format of WebSocket messages.
type envelope struct {
	Type string     `json:"type"`
	Ts   *time.Time `json:"ts,omitempty"`
	Data any        `json:"data,omitempty"`
}

// inbound is an envelope as received from a client.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SceneData is the payload of a "scene" message.
type SceneData struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	SVG    string  `json:"svg"`
}

// FrameData is the payload of a "frame" message.
type FrameData struct {
	Angle     float64 `json:"angle"`
	Transform string  `json:"transform"`
	Value     float64 `json:"value"`
	Text      string  `json:"text"`
	Done      bool    `json:"done"`
}

// ValueRequest is the body of POST /value and the data of "set_value".
type ValueRequest struct {
	Value *float64 `json:"value"`
}

// UpdateResponse is returned by POST /value and PUT /config.
type UpdateResponse struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Config configures a Server.
type Config struct {
	Hub HubConfig

	// PNGScale is the device pixel ratio of GET /gauge.png. Zero means 1.
	PNGScale float64
}

// Server owns one gauge and its connected browsers.
type Server struct {
	logger *slog.Logger
	hub    *Hub
	gauge  *gauge.Gauge
	mux    *http.ServeMux

	pngScale float64
}

// NewServer creates the gauge from cfg and moves its needle to value.
// opts are passed to gauge.New after the server's own listeners, so a
// caller may replace the scheduler or clock but not the listeners.
func NewServer(logger *slog.Logger, cfg gauge.Config, value float64, sc Config, opts ...gauge.Option) (*Server, error) {
	if logger == nil {
		logger = gauge.Logger()
	}
	s := &Server{
		logger:   logger,
		hub:      NewHub(logger, sc.Hub),
		pngScale: sc.PNGScale,
	}
	if s.pngScale <= 0 {
		s.pngScale = 1
	}

	gopts := append([]gauge.Option{
		gauge.WithFrameListener(s.onFrame),
		gauge.WithSceneListener(s.onScene),
	}, opts...)
	g, err := gauge.New(cfg, gopts...)
	if err != nil {
		return nil, err
	}
	if _, err := g.SetValue(value); err != nil {
		_ = g.Close()
		return nil, err
	}
	s.gauge = g

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /gauge.svg", s.handleSVG)
	s.mux.HandleFunc("GET /gauge.png", s.handlePNG)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("POST /value", s.handleValue)
	s.mux.HandleFunc("GET /config", s.handleGetConfig)
	s.mux.HandleFunc("PUT /config", s.handlePutConfig)
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.mux }

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Gauge returns the served gauge.
func (s *Server) Gauge() *gauge.Gauge { return s.gauge }

// Run runs the hub until ctx is canceled.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// Close stops the gauge animation.
func (s *Server) Close() error {
	return s.gauge.Close()
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. The hub runs for the lifetime of the call.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("live: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("live: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// marshal wraps data in an envelope stamped with the current time.
func marshal(typ string, data any) ([]byte, error) {
	now := time.Now().UTC()
	return json.Marshal(envelope{Type: typ, Ts: &now, Data: data})
}

func (s *Server) onFrame(f gauge.Frame) {
	msg, err := marshal(TypeFrame, FrameData{
		Angle:     f.Angle,
		Transform: f.Transform,
		Value:     f.Value,
		Text:      f.Text,
		Done:      f.Done,
	})
	if err != nil {
		s.logger.Warn("live: marshal frame", "error", err)
		return
	}
	s.hub.BroadcastBytes(msg)
}

func (s *Server) onScene(sc *gauge.Scene) {
	msg, err := sceneMessage(sc)
	if err != nil {
		s.logger.Warn("live: marshal scene", "error", err)
		return
	}
	s.hub.BroadcastBytes(msg)
}

func sceneMessage(sc *gauge.Scene) ([]byte, error) {
	markup, err := svg.Marshal(sc)
	if err != nil {
		return nil, err
	}
	return marshal(TypeScene, SceneData{
		ID:     sc.ID,
		Width:  sc.Width,
		Height: sc.Height,
		SVG:    string(markup),
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("live: upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn, r.RemoteAddr, s.logger)
	client.onMessage = s.onClientMessage

	// Queue the snapshot before registering so it is the first message.
	msg, err := sceneMessage(s.gauge.Scene())
	if err != nil {
		s.logger.Warn("live: marshal scene", "error", err)
		_ = conn.Close()
		return
	}
	client.trySend(msg)

	if !s.hub.join(client) {
		_ = conn.Close()
		return
	}

	// The pumps outlive the request; the hub and connection errors end them.
	go client.writePump(context.Background())
	go client.readPump(context.Background())
}

func (s *Server) onClientMessage(c *Client, msg []byte) {
	var in inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		s.replyError(c, fmt.Errorf("decode message: %w", err))
		return
	}

	switch in.Type {
	case TypeSetValue:
		var req ValueRequest
		if err := json.Unmarshal(in.Data, &req); err != nil || req.Value == nil {
			s.replyError(c, errors.New(`set_value: data must be {"value": number}`))
			return
		}
		if _, err := s.gauge.SetValue(*req.Value); err != nil {
			s.replyError(c, err)
		}
	default:
		s.replyError(c, fmt.Errorf("unknown message type %q", in.Type))
	}
}

func (s *Server) replyError(c *Client, err error) {
	s.logger.Debug("live: client error", "remote_addr", c.remoteAddr, "error", err)
	msg, mErr := marshal(TypeError, errorResponse{Error: err.Error()})
	if mErr != nil {
		return
	}
	c.trySend(msg)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sc := s.gauge.Scene()
	markup, err := svg.Marshal(sc)
	if err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, indexData{ID: sc.ID, SVG: safeSVG(markup)}); err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.serveScene(w, "svg", render.Options{})
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	s.serveScene(w, "png", render.Options{Scale: s.pngScale})
}

// serveScene renders the current scene in the named format.
func (s *Server) serveScene(w http.ResponseWriter, format string, opts render.Options) {
	f, err := render.Lookup(format)
	if err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, f, opts, s.gauge.Scene()); err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", f.MediaType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.httpError(w, http.StatusBadRequest, err)
		return
	}
	if req.Value == nil {
		s.httpError(w, http.StatusBadRequest, errors.New(`body must be {"value": number}`))
		return
	}

	kind, err := s.gauge.SetValue(*req.Value)
	if err != nil {
		s.httpError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{Kind: kind.String(), Value: s.gauge.Value()})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gauge.Config())
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	cfg := gauge.DefaultConfig()
	if err := decodeJSON(w, r, &cfg); err != nil {
		s.httpError(w, http.StatusBadRequest, err)
		return
	}

	kind, err := s.gauge.SetConfig(cfg)
	if err != nil {
		s.httpError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{Kind: kind.String(), Value: s.gauge.Value()})
}

// statusFor maps gauge errors to HTTP status codes.
func statusFor(err error) int {
	var fe *gauge.FieldError
	switch {
	case errors.Is(err, gauge.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &fe),
		errors.Is(err, gauge.ErrInvalidTickSpacing),
		errors.Is(err, gauge.ErrTooManyTicks):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) httpError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("live: request failed", "status", status, "error", err)
	} else {
		s.logger.Debug("live: bad request", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
