package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mav-playback/models"
	"mav-playback/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 2 * time.Second

// Status is the body of /api/status.
type Status struct {
	RunID     string              `json:"run_id"`
	Frames    uint64              `json:"frames"`
	Clients   int                 `json:"clients"`
	Latest    *models.FrameReport `json:"latest,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Server exposes live playback state over HTTP: the latest frame report
// at /api/status, a push stream of every report at /ws and the run's
// Prometheus metrics at /metrics.
type Server struct {
	cfg   utils.MonitorConfig
	runID string
	http  *http.Server
	mux   *http.ServeMux

	mu      sync.RWMutex
	latest  *models.FrameReport
	frames  uint64
	updated time.Time
	clients map[*wsClient]struct{}

	closeOnce sync.Once
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer builds the monitor. gatherer may be nil, in which case
// /metrics is not served.
func NewServer(cfg utils.MonitorConfig, runID string, gatherer prometheus.Gatherer) *Server {
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 64
	}
	s := &Server{
		cfg:     cfg,
		runID:   runID,
		mux:     http.NewServeMux(),
		clients: make(map[*wsClient]struct{}),
	}
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/ws", s.handleWS)
	if gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.http = &http.Server{Addr: cfg.Addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on the configured address in the background.
func (s *Server) Start() {
	go func() {
		utils.L().Info("monitor listening on %s", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.L().Error("monitor: %v", err)
		}
	}()
}

// OnFrame records the report and pushes it to every websocket client.
// Clients whose buffer is full miss the report.
func (s *Server) OnFrame(r models.FrameReport) {
	payload, err := json.Marshal(r)
	if err != nil {
		utils.L().Error("monitor: marshal frame report: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &r
	s.frames++
	s.updated = time.Now()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Close disconnects every client and shuts the HTTP server down within
// the configured grace period.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		for c := range s.clients {
			close(c.send)
			delete(s.clients, c)
		}
		frames := s.frames
		s.mu.Unlock()

		grace := time.Duration(s.cfg.ShutdownGrace) * time.Millisecond
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		err = s.http.Shutdown(ctx)
		utils.L().Info("monitor stopped  (frames_seen=%d)", frames)
	})
	return err
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := Status{
		RunID:     s.runID,
		Frames:    s.frames,
		Clients:   len(s.clients),
		UpdatedAt: s.updated,
	}
	if s.latest != nil {
		latest := *s.latest
		st.Latest = &latest
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		utils.L().Warn("monitor: encode status: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.L().Warn("monitor: websocket upgrade: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, s.cfg.ClientBuffer)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	utils.L().Debug("monitor: websocket client connected from %s", r.RemoteAddr)

	go s.readLoop(c)
	s.writeLoop(c)
}

// readLoop only watches for the peer going away.
func (s *Server) readLoop(c *wsClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *Server) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.drop(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "playback finished"),
		time.Now().Add(writeWait))
}

func (s *Server) drop(c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}
