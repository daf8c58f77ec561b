// ABOUTME: Websocket feed of the message log for live rendering clients.
// ABOUTME: Sends a snapshot on connect, then every appended message as it happens.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/2389/lehmate/internal/assistant"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 45 * time.Second
)

// Frame types sent over the websocket.
const (
	FrameSnapshot = "snapshot"
	FrameMessage  = "message"
)

// Frame is one websocket payload. Snapshot frames carry Messages, message
// frames carry Message.
type Frame struct {
	Type     string              `json:"type"`
	Message  *assistant.Message  `json:"message,omitempty"`
	Messages []assistant.Message `json:"messages,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.broadcaster == nil {
		respondError(w, http.StatusServiceUnavailable, "live feed unavailable")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before the snapshot so nothing appended in between is lost.
	// A message may then appear in both; clients de-duplicate by id.
	events, subID := s.broadcaster.Subscribe(ctx)
	s.logger.Debug("websocket connected", "sub_id", subID)

	go s.readPump(conn, cancel)

	if err := s.writeFrame(conn, Frame{Type: FrameSnapshot, Messages: s.engine.Messages()}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("websocket closed", "sub_id", subID)
			return
		case msg, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			if err := s.writeFrame(conn, Frame{Type: FrameMessage, Message: &msg}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed, and
// cancels the connection context once the client goes away.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(f); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}
