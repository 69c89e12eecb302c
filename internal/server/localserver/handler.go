package localserver

import (
	"encoding/json"
	"fmt"
	"io"
)

// ErrorPrefix starts every reply that reports a failure.
const ErrorPrefix = "error: "

// Actions are the gate operations exposed on the socket. A nil field makes
// the command report that it is unsupported.
type Actions struct {
	// Status returns a JSON-encodable snapshot of the gate.
	Status func() any

	// Reload re-reads the configuration file.
	Reload func() error

	// Shutdown starts a graceful shutdown and returns without waiting.
	Shutdown func(reason string)
}

// Handler handles local management commands.
type Handler struct {
	actions Actions
}

// NewHandler creates a new Handler.
func NewHandler(actions Actions) *Handler {
	return &Handler{actions: actions}
}

// Execute runs one command and writes its reply to w. Command failures are
// reported in the reply; the returned error is for write failures only.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "ping":
		return reply(w, "pong")
	case "status":
		if h.actions.Status == nil {
			return replyError(w, "status is not supported")
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(h.actions.Status())
	case "reload":
		if h.actions.Reload == nil {
			return replyError(w, "reload is not supported")
		}
		if err := h.actions.Reload(); err != nil {
			return replyError(w, err.Error())
		}
		return reply(w, "ok")
	case "shutdown":
		if h.actions.Shutdown == nil {
			return replyError(w, "shutdown is not supported")
		}
		h.actions.Shutdown("admin socket")
		return reply(w, "ok")
	default:
		return replyError(w, "unknown command: "+cmd)
	}
}

func reply(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

func replyError(w io.Writer, msg string) error {
	return reply(w, ErrorPrefix+msg)
}
