// Package http provides HTTP handlers and middleware for the assistant API.
//
// The router exposes the following endpoints, all of which identify the
// acting user through the `X-User-ID` header supplied by the chat gateway:
//   - POST /schedule: processes a natural-language scheduling request. Body:
//     {"conversation_id","text"}. Response: the created event with its
//     participant list.
//   - POST /plans: runs a free-text request through the classify → decompose
//     → execute → summarize pipeline. GET /plans lists the caller's plans;
//     GET /plans/{id} fetches one with its tasks.
//   - GET /events: lists the caller's own event copies. POST
//     /events/{id}/respond records an accept or decline, PUT /events/{id}
//     moves the event (creator only), DELETE /events/{id} removes every
//     participant's copy (creator only).
//   - PUT /members/{id}/role: self-assigns the caller's role in a
//     conversation.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
