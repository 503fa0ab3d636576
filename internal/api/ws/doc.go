// Package ws streams numeric anomaly events over WebSocket.
//
// Every connection subscribes to the engine's tracer. Events are queued in
// a bounded buffer and dropped when a slow client falls behind, so a
// stalled socket never blocks an addition.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//   - subscribe: Set min_severity for streamed events
//   - add: Add operands a and b with the engine's config
//
// Message Types (Server → Client):
//   - system: Welcome message with engine id and config
//   - event: One recorded anomaly
//   - result: Reply to add
//   - subscribed, pong, error
//
// Example Usage:
//
//	handler := ws.NewHandler(eng, metrics, logger)
//	router.GET("/v1/stream", handler.HandleConnection)
package ws
