// Diagnostic HTTP surface for the tracking subsystem
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fieldtrack/internal/logging"
	"fieldtrack/internal/tracker"
)

// Server exposes controller status and the live fix stream. It is a
// diagnostic endpoint, not the product UI.
type Server struct {
	ctrl     *tracker.Controller
	upgrader websocket.Upgrader
}

// NewServer wires the admin surface to a controller.
func NewServer(ctrl *tracker.Controller) *Server {
	return &Server{
		ctrl: ctrl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /last-fix", s.handleLastFix)
	mux.HandleFunc("POST /pause", s.handlePause)
	mux.HandleFunc("POST /resume", s.handleResume)
	mux.HandleFunc("POST /heartbeat", s.handleHeartbeat)
	mux.HandleFunc("GET /stream", s.handleStream)
	return mux
}

// Handler returns the admin mux, mostly for tests.
func (s *Server) Handler() http.Handler { return s.routes() }

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.ctrl.StatusSnapshot())
}

func (s *Server) handleLastFix(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ctrl.LastKnown()
	if !ok {
		http.Error(w, "no fix recorded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Resume()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SendHeartbeat()
	w.WriteHeader(http.StatusNoContent)
}

// handleStream upgrades to a websocket and pushes each broadcast fix as a
// JSON message until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub := s.ctrl.Subscribe(32)
	defer s.ctrl.Unsubscribe(sub)

	for {
		select {
		case fix, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(fix); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
