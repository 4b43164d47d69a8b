// Package session implements the client-side state machine for a
// two-party conversation: identifier-only login, peer selection, and a
// fixed-interval poll loop with watermark-based incremental rendering.
//
// # Lifecycle
//
//	logged-out --Login--> logged-in --LoadPeer--> polling
//	                                              |  ^
//	                                 SetVisible(false) SetVisible(true)
//	any state --Logout--> logged-out
//
// The poll loop is an explicit cancellable repeating task owned by the
// Session, so pausing on visibility changes and cancelling on logout
// are well-defined operations rather than ad hoc timer bookkeeping.
//
// # Rendering
//
// The Session retains the highest message id it has rendered (the
// watermark). Each poll appends only rows above the watermark to the
// View and advances it; a refresh with nothing new changes nothing. At
// most HistoryLimit rows are retained; dropping old rows never moves
// the watermark. The View interface keeps the loop testable without a
// DOM or a terminal attached.
package session
