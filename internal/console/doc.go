// Package console is the gateway's operator surface over a set of
// configured RCON targets: one protocol engine client per target, a
// bounded per-target command history, a WebSocket fan-out of live
// engine events, and the HTTP API tying them together.
package console
