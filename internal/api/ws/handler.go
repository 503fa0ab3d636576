package ws

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/nuclear-add/internal/api/http"
	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nuclear-add/internal/logging"
	"github.com/GriffinCanCode/nuclear-add/internal/shared/types"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	eventBuffer  = 256
	outboxBuffer = 16
	maxMessage   = 1 << 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS middleware
	},
}

// Message is a client request. "add" carries two operands; "ping"
// and "subscribe" carry nothing else.
type Message struct {
	Type        string        `json:"type"`
	ID          string        `json:"id,omitempty"`
	A           api.ValueJSON `json:"a"`
	B           api.ValueJSON `json:"b"`
	MinSeverity string        `json:"min_severity,omitempty"`
}

// Handler streams anomaly events to WebSocket clients and answers
// additions sent over the same connection
type Handler struct {
	engine  *engine.Engine
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler. metrics and logger may be nil.
func NewHandler(e *engine.Engine, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		engine:  e,
		metrics: metrics,
		logger:  logging.OrNop(logger),
	}
}

// session is one connected client. Only the writer goroutine touches conn
// for writes.
type session struct {
	conn      *websocket.Conn
	events    chan errtrace.ErrorEvent
	outbox    chan any
	done      chan struct{}
	stopped   chan struct{}
	threshold atomic.Int32
	dropped   atomic.Uint64
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	s := &session{
		conn:    conn,
		events:  make(chan errtrace.ErrorEvent, eventBuffer),
		outbox:  make(chan any, outboxBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	cancel := h.engine.Tracer().Observe(func(ev errtrace.ErrorEvent) {
		if ev.Severity < errtrace.ErrorSeverity(s.threshold.Load()) {
			return
		}
		select {
		case s.events <- ev:
		default:
			s.dropped.Add(1)
		}
	})
	defer cancel()

	go func() {
		defer close(s.stopped)
		h.writeLoop(s)
	}()

	s.send(gin.H{
		"type":    "system",
		"message": "Connected to nuclear-add",
		"engine":  h.engine.ID().String(),
		"config":  h.engine.Config().String(),
	})

	h.readLoop(s)
	close(s.done)
	<-s.stopped

	if n := s.dropped.Load(); n > 0 {
		h.logger.Warn("WebSocket client dropped events", zap.Uint64("dropped", n))
	}
}

// send queues a reply unless the writer has stopped
func (s *session) send(msg any) {
	select {
	case s.outbox <- msg:
	case <-s.stopped:
	}
}

func (h *Handler) readLoop(s *session) {
	s.conn.SetReadLimit(maxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "ping":
			s.send(gin.H{"type": "pong"})
		case "subscribe":
			h.subscribe(s, msg)
		case "add":
			h.add(s, msg)
		default:
			s.send(errorMessage(msg.ID, "unknown message type"))
		}
	}
}

func (h *Handler) subscribe(s *session, msg Message) {
	threshold := errtrace.Info
	if msg.MinSeverity != "" {
		parsed, err := errtrace.ParseSeverity(msg.MinSeverity)
		if err != nil {
			s.send(errorMessage(msg.ID, err.Error()))
			return
		}
		threshold = parsed
	}
	s.threshold.Store(int32(threshold))
	s.send(gin.H{"type": "subscribed", "id": msg.ID, "min_severity": threshold})
}

func (h *Handler) add(s *session, msg Message) {
	a, err := msg.A.Decode()
	if err != nil {
		s.send(errorMessage(msg.ID, err.Error()))
		return
	}
	b, err := msg.B.Decode()
	if err != nil {
		s.send(errorMessage(msg.ID, err.Error()))
		return
	}

	result, err := h.engine.Add(a, b)
	if err != nil {
		s.send(errorMessage(msg.ID, err.Error()))
		return
	}
	s.send(gin.H{
		"type":   "result",
		"id":     msg.ID,
		"result": api.EncodeValue(result),
		"scalar": types.Float(result.Scalar()),
	})
}

func (h *Handler) writeLoop(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case ev := <-s.events:
			if !h.write(s, "event", gin.H{"type": "event", "event": ev}) {
				return
			}
		case msg := <-s.outbox:
			if !h.write(s, "reply", msg) {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// write sends one JSON frame. On failure the connection is closed so the
// read loop unblocks.
func (h *Handler) write(s *session, kind string, v any) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(v); err != nil {
		h.logger.Debug("WebSocket write failed", zap.Error(err))
		s.conn.Close()
		return false
	}
	h.metrics.RecordWSMessage("out", kind)
	return true
}

func errorMessage(id, msg string) gin.H {
	return gin.H{"type": "error", "id": id, "message": msg}
}
