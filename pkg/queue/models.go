// Package queue defines the requests exchanged through the Redis command
// queue, letting processes that do not own a simulation submit commands to
// one that does.
package queue

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hexsim/pkg/tools"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeCommand carries a structured tool command.
	RequestTypeCommand RequestType = "command"

	// RequestTypeText carries free text to be translated.
	RequestTypeText RequestType = "text"

	// RequestTypeTick advances the clock without a command.
	RequestTypeTick RequestType = "tick"
)

// ErrMissingCommand is returned when a request lacks what its type needs.
var ErrMissingCommand = errors.New("request has nothing to run")

// Request is one queued unit of work for a session.
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`

	// Command-specific fields
	Tool   tools.Name   `json:"tool,omitempty"`
	Params tools.Params `json:"params,omitempty"`

	// Text-specific fields
	Text string `json:"text,omitempty"`

	// Tick-specific fields
	Ticks int `json:"ticks,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewCommandRequest builds a command request with a fresh id.
func NewCommandRequest(actorID string, cmd tools.Command) *Request {
	return &Request{
		RequestID:  uuid.NewString(),
		Type:       RequestTypeCommand,
		ActorID:    actorID,
		Tool:       cmd.Tool,
		Params:     cmd.Params,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewTextRequest builds a free-text request with a fresh id.
func NewTextRequest(actorID, text string) *Request {
	return &Request{
		RequestID:  uuid.NewString(),
		Type:       RequestTypeText,
		ActorID:    actorID,
		Text:       text,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewTickRequest builds a request advancing the clock n ticks.
func NewTickRequest(n int) *Request {
	return &Request{
		RequestID:  uuid.NewString(),
		Type:       RequestTypeTick,
		Ticks:      n,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Command returns the tool command a command request carries.
func (r *Request) Command() tools.Command {
	return tools.Command{Tool: r.Tool, Params: r.Params}
}

// Validate checks the request carries what its type needs.
func (r *Request) Validate() error {
	switch r.Type {
	case RequestTypeCommand:
		if r.Tool == "" {
			return ErrMissingCommand
		}
	case RequestTypeText:
		if r.Text == "" {
			return ErrMissingCommand
		}
	case RequestTypeTick:
		if r.Ticks < 1 {
			return ErrMissingCommand
		}
	default:
		return errors.New("unknown request type: " + string(r.Type))
	}
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Result reports how a request was handled.
type Result struct {
	RequestID string   `json:"request_id"`
	Tick      int      `json:"tick"`
	Lines     []string `json:"lines,omitempty"`
	Error     string   `json:"error,omitempty"`
	Code      string   `json:"code,omitempty"`
}
