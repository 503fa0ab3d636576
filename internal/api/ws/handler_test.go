package ws

import (
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func dial(t *testing.T) (*websocket.Conn, *engine.Engine) {
	t.Helper()
	e, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)

	router := gin.New()
	h := NewHandler(e, monitoring.NewMetrics(prometheus.NewRegistry()), nil)
	router.GET("/v1/stream", h.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, "system", welcome["type"])
	require.Equal(t, e.ID().String(), welcome["engine"])
	return conn, e
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPing(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", read(t, conn)["type"])
}

func TestAddOverSocket(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "add", "id": "1", "a": 0.5, "b": 0.25}))
	msg := read(t, conn)
	assert.Equal(t, "result", msg["type"])
	assert.Equal(t, "1", msg["id"])
	assert.Equal(t, 0.75, msg["scalar"])
}

func TestUnknownMessage(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "chat", "id": "x"}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "x", msg["id"])
}

func TestEventsAreStreamed(t *testing.T) {
	conn, e := dial(t)

	_, err := e.Add(numeric.Scalar(math.NaN()), numeric.Scalar(1))
	require.NoError(t, err)

	msg := read(t, conn)
	require.Equal(t, "event", msg["type"])
	event := msg["event"].(map[string]any)
	assert.Equal(t, "nan_produced", event["error_type"])
	assert.Equal(t, "critical", event["severity"])
}

func TestSubscribeFiltersBySeverity(t *testing.T) {
	conn, e := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "min_severity": "critical"}))
	ack := read(t, conn)
	require.Equal(t, "subscribed", ack["type"])
	assert.Equal(t, "critical", ack["min_severity"])

	// cancellation is a warning and must not arrive
	_, err := e.Add(numeric.Scalar(1), numeric.Scalar(-1+1e-12))
	require.NoError(t, err)
	_, err = e.Add(numeric.Scalar(math.MaxFloat64), numeric.Scalar(math.MaxFloat64))
	require.NoError(t, err)

	msg := read(t, conn)
	require.Equal(t, "event", msg["type"])
	assert.Equal(t, "overflow", msg["event"].(map[string]any)["error_type"])
}

func TestSubscribeRejectsUnknownSeverity(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "min_severity": "loud"}))
	assert.Equal(t, "error", read(t, conn)["type"])
}

func TestSlowClientDoesNotBlockRecording(t *testing.T) {
	_, e := dial(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < eventBuffer*4; i++ {
			_, _ = e.Add(numeric.Scalar(math.NaN()), numeric.Scalar(1))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recording blocked on an unread socket")
	}
	assert.Equal(t, eventBuffer*4, e.Tracer().Len())
}
