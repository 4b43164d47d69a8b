// Package client provides a typed HTTP client for the duochat API.
//
// Transport failures and server-reported errors are distinguishable:
// the former wrap the underlying error behind a "connection failed"
// message, the latter surface as *APIError (or ErrNotFound for 404s)
// carrying the server's error text.
package client
