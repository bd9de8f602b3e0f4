package rcon

// EventKind names one notification in the engine's fixed vocabulary.
type EventKind uint8

const (
	// EventConnect fires once the transport is established.
	EventConnect EventKind = iota + 1
	// EventAuth fires once the handshake completes.
	EventAuth
	// EventResponse carries a reply body, correlated or not.
	EventResponse
	// EventServer carries an unsolicited server-originated message.
	EventServer
	// EventError carries malformed-input, authentication, precondition,
	// and transport failures. None of them end the session by
	// themselves.
	EventError
	// EventEnd fires once per session when the transport closes.
	EventEnd
)

var eventNames = map[EventKind]string{
	EventConnect:  "connect",
	EventAuth:     "auth",
	EventResponse: "response",
	EventServer:   "server",
	EventError:    "error",
	EventEnd:      "end",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one notification surfaced through Client.Events. Body is set
// for response and server events, Err for error events. Delivery is
// ordered and at-most-once per session.
type Event struct {
	Kind EventKind
	Body string
	Err  error
}
