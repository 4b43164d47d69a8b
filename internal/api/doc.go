// Package api implements the duochat HTTP JSON API.
//
// # Endpoints
//
//   - GET /api/users/{id}: look up a user by numeric id (id and name only)
//   - POST /api/users: register a user (name, email, senha)
//   - GET /api/messages?userId=A&peerId=B: full conversation between a
//     pair of users, both directions, ordered by id ascending
//   - POST /api/messages: persist a message (from_id, to_id, content)
//   - GET /health: liveness check
//
// # Error Handling
//
// Failures fall into three buckets at the handler boundary: malformed or
// missing input is a 400 whose body names the offending field, an unknown
// user id on the lookup path is a 404, and any store failure is a 500
// with a generic body. Store error detail is logged server-side only.
// Error bodies have the shape {"error": "..."}.
package api
