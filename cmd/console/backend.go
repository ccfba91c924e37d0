package main

import (
	"context"

	"github.com/jwebster45206/hexsim/internal/play"
)

// Backend runs typed lines somewhere: in this process or on an API server.
type Backend interface {
	Handle(ctx context.Context, line string) play.Reply
	Status(ctx context.Context) (play.Status, error)
	Name() string
}

// localBackend runs an in-process session.
type localBackend struct {
	in *play.Interpreter
}

func (b localBackend) Handle(ctx context.Context, line string) play.Reply {
	return b.in.Handle(ctx, line)
}

func (b localBackend) Status(context.Context) (play.Status, error) {
	return b.in.Status(), nil
}

func (b localBackend) Name() string { return "local" }
