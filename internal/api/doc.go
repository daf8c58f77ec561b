// Package api exposes the assistant, settings, and static content over HTTP.
//
// # Endpoints
//
//	GET  /health
//	GET  /api/messages              log snapshot; ?format=html adds rendered HTML
//	POST /api/messages              {"text": "..."}; honours Idempotency-Key
//	DELETE /api/messages/{id}/reply drop the pending reply to a user message
//	GET  /api/suggestions
//	POST /api/suggestions/{index}   submit a quick suggestion
//	GET  /api/ws                    websocket: snapshot frame, then message frames
//	GET  /api/profile
//	PUT  /api/settings/{name}       {"enabled": true|false}
//	DELETE /api/settings/{name}     restore the default
//	GET  /api/launch                result of the startup first-launch check
//
// Submissions are clamped to assistant.MaxInputLength characters here, at the
// boundary. Whitespace-only submissions are answered with accepted=false and
// leave the log unchanged.
package api
