package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/pfrederiksen/cricscore/internal/config"
	"github.com/pfrederiksen/cricscore/internal/filter"
	"github.com/pfrederiksen/cricscore/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// IntervalController reads and changes the refresh interval
type IntervalController interface {
	Interval() time.Duration
	SetInterval(d time.Duration) error
}

// Server is the dashboard HTTP server
type Server struct {
	sink      *Sink
	intervals IntervalController
	router    *mux.Router
}

// NewServer wires the routes. intervals may be nil, in which case the
// interval cannot be changed.
func NewServer(sink *Sink, intervals IntervalController) *Server {
	s := &Server{
		sink:      sink,
		intervals: intervals,
		router:    mux.NewRouter(),
	}

	s.router.Use(logRequests)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/matches", s.handleMatches).Methods(http.MethodGet)
	api.HandleFunc("/metrics", handleMetrics).Methods(http.MethodGet)
	api.HandleFunc("/refresh-interval", s.handleGetInterval).Methods(http.MethodGet)
	api.HandleFunc("/refresh-interval", s.handleSetInterval).Methods(http.MethodPut)

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("dashboard shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

func (s *Server) interval() time.Duration {
	if s.intervals == nil {
		return 0
	}
	return s.intervals.Interval()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := renderPage(s.sink.view(s.interval()))
	if err != nil {
		logger.Error("rendering page", nil, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	initial, err := renderLive(s.sink.view(s.interval()))
	if err != nil {
		logger.Error("rendering live fragment", nil, err)
		initial = nil
	}

	// Upgrade writes its own error response
	if err := s.sink.Hub().Serve(w, r, initial); err != nil {
		logger.Warn("websocket upgrade failed", logger.Fields{"remote": r.RemoteAddr, "error": err.Error()})
	}
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap := s.sink.Latest()
	snap.Matches = f.Apply(snap.Matches)

	status := http.StatusOK
	if snap.Err != nil {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, snap)
}

// filterFromQuery reads ?team= (repeatable), ?status=, ?live= and ?result=
func filterFromQuery(r *http.Request) (*filter.Filter, error) {
	q := r.URL.Query()
	f := &filter.Filter{Status: strings.TrimSpace(q.Get("status"))}

	for _, team := range q["team"] {
		if team = strings.TrimSpace(team); team != "" {
			f.Teams = append(f.Teams, team)
		}
	}

	var err error
	if f.LiveOnly, err = boolParam(q.Get("live")); err != nil {
		return nil, fmt.Errorf("invalid live parameter: %w", err)
	}
	if f.ResultOnly, err = boolParam(q.Get("result")); err != nil {
		return nil, fmt.Errorf("invalid result parameter: %w", err)
	}
	return f, nil
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logger.GetMetricsSnapshot())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

type intervalResponse struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleGetInterval(w http.ResponseWriter, r *http.Request) {
	if s.intervals == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("refresh interval is not adjustable"))
		return
	}
	writeJSON(w, http.StatusOK, intervalResponse{Seconds: int(s.intervals.Interval() / time.Second)})
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	if s.intervals == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("refresh interval is not adjustable"))
		return
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(r.FormValue("seconds")))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("seconds must be an integer"))
		return
	}
	if err := config.ValidateInterval(seconds); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.intervals.SetInterval(time.Duration(seconds) * time.Second); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("refresh interval updated", logger.Fields{"seconds": seconds, "remote": r.RemoteAddr})
	writeJSON(w, http.StatusOK, intervalResponse{Seconds: seconds})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Warn("encoding response", logger.Fields{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusRecorder captures the response code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade through the recorder
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.IncrCounter("dashboard.requests")
		logger.RecordTiming("dashboard.request", time.Since(start))
		logger.Debug("http request", logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}
