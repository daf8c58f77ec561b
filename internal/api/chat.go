// ABOUTME: Chat endpoints: read the message log, submit text, and use quick suggestions.
// ABOUTME: Input is clamped to the maximum length here, before it reaches the engine.

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/2389/lehmate/internal/assistant"
)

// maxBodyBytes caps request bodies well above any clamped submission.
const maxBodyBytes = 64 << 10

// MessageResponse is one log entry. HTML is set only when requested.
type MessageResponse struct {
	assistant.Message
	HTML string `json:"html,omitempty"`
}

// MessagesResponse is the JSON response for GET /api/messages.
type MessagesResponse struct {
	SessionID          string            `json:"session_id"`
	Messages           []MessageResponse `json:"messages"`
	SuggestionsVisible bool              `json:"suggestions_visible"`
}

// SubmitRequest is the JSON request body for POST /api/messages.
type SubmitRequest struct {
	Text string `json:"text"`
}

// SubmitResponse reports what happened to a submission.
type SubmitResponse struct {
	Accepted  bool               `json:"accepted"`
	Duplicate bool               `json:"duplicate,omitempty"`
	Truncated bool               `json:"truncated,omitempty"`
	Message   *assistant.Message `json:"message,omitempty"`
}

// SuggestionsResponse is the JSON response for GET /api/suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Visible     bool     `json:"visible"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	renderHTML := r.URL.Query().Get("format") == "html"

	msgs := s.engine.Messages()
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = MessageResponse{Message: m}
		if renderHTML {
			out[i].HTML = s.renderMarkdown(m.Text)
		}
	}

	respondJSON(w, http.StatusOK, MessagesResponse{
		SessionID:          s.engine.SessionID(),
		Messages:           out,
		SuggestionsVisible: len(msgs) == 1,
	})
}

// renderMarkdown converts message text to HTML. Raw HTML in the text is
// escaped by goldmark's default renderer.
func (s *Server) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return ""
	}
	return buf.String()
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key != "" && s.dedupe != nil {
		if s.dedupe.CheckAndMark(key) {
			s.logger.Debug("duplicate submission ignored", "idempotency_key", key)
			respondJSON(w, http.StatusOK, SubmitResponse{Duplicate: true})
			return
		}
	}

	// A key only counts as used once its text was accepted.
	if !s.submit(w, req.Text, s.engine.Submit) && key != "" && s.dedupe != nil {
		s.dedupe.Forget(key)
	}
}

// handleCancelReply drops the pending reply to a user message. Replies that
// were already delivered, or never scheduled, are reported as not found.
func (s *Server) handleCancelReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.engine.Cancel(id) {
		respondError(w, http.StatusNotFound, "no pending reply")
		return
	}
	s.logger.Debug("reply cancelled", "message_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuggestionsResponse{
		Suggestions: s.catalog.Suggestions,
		Visible:     s.engine.SuggestionsVisible(),
	})
}

func (s *Server) handleSubmitSuggestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "suggestion index must be a number")
		return
	}
	suggestion, ok := s.catalog.Suggestion(index)
	if !ok {
		respondError(w, http.StatusNotFound, "suggestion not found")
		return
	}

	s.submit(w, suggestion, s.engine.SubmitSuggestion)
}

// submit clamps text, hands it to fn, and reports whether it was accepted.
// Whitespace-only text is not an error; it is reported as not accepted.
func (s *Server) submit(w http.ResponseWriter, text string, fn func(string) (assistant.Message, bool)) bool {
	clamped := assistant.ClampInput(text)
	truncated := len(clamped) != len(text)

	msg, ok := fn(clamped)
	if !ok {
		respondJSON(w, http.StatusOK, SubmitResponse{Accepted: false})
		return false
	}

	respondJSON(w, http.StatusAccepted, SubmitResponse{
		Accepted:  true,
		Truncated: truncated,
		Message:   &msg,
	})
	return true
}
