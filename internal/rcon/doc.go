// Package rcon implements a client engine for the RCON remote console
// protocol family.
//
// Two wire dialects are supported behind one surface: length-prefixed
// packets over a TCP stream, reassembled across arbitrary read
// boundaries, and challenge/response datagrams over UDP. A Client owns
// at most one live session at a time; commands dispatched over TCP are
// correlated back to their replies by pseudo-random request ids, and
// everything the engine observes is surfaced through a single ordered
// notification channel using the vocabulary connect, auth, response,
// server, error, end.
//
// The engine deliberately carries no retry, reconnect, or rate
// limiting policy. Callers decide what a failure means.
package rcon
