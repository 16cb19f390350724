// Package auth implements the authentication and session core for a
// user-data backend: credential storage, password hashing, opaque session
// tokens, path-based authorization decisions, and single-use password reset
// tokens.
//
// Sessions:
//   - SessionManager owns the token -> user mapping. It is constructed once
//     per process with an explicit SessionStore (in-memory map, the users
//     table itself, or a dedicated user_sessions table) and an optional
//     expiration duration. A user holds at most one live session token; a
//     new login invalidates the previous token.
//
// Authorization:
//   - Gate answers the per-request question "does this path require
//     authentication, and if so, who is the caller". It understands Basic
//     authorization headers and session cookies, and collapses every
//     credential failure into the same outcome so callers cannot probe
//     which part was wrong.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to
//     describe login, logout, and password reset events. Sinks run
//     best-effort (errors are logged) so you can forward to a database or
//     queue without blocking authentication.
package auth
