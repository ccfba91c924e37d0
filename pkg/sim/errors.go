package sim

import (
	"fmt"

	"github.com/samber/oops"
)

// Error codes for rejected commands.
const (
	CodeUnknownTool        = "UNKNOWN_TOOL"
	CodeActorBusy          = "ACTOR_BUSY"
	CodeInvalidIntent      = "INVALID_INTENT"
	CodeTranslationFailure = "TRANSLATION_FAILURE"
)

// ErrUnknownTool creates an error for a command naming no registered tool.
func ErrUnknownTool(tool, actorID string, tick int) error {
	return oops.Code(CodeUnknownTool).
		With("tool", tool).
		With("actor", actorID).
		With("tick", tick).
		Errorf("unknown tool: %s", tool)
}

// ErrActorBusy creates an error for an actor still occupied by an earlier
// action.
func ErrActorBusy(tool, actorID string, tick, nextAvailable int) error {
	return oops.Code(CodeActorBusy).
		With("tool", tool).
		With("actor", actorID).
		With("tick", tick).
		With("next_available_tick", nextAvailable).
		Errorf("actor %s is busy until tick %d", actorID, nextAvailable)
}

// ErrInvalidIntent creates an error for a command that fails validation or
// names an unknown actor.
func ErrInvalidIntent(tool, actorID string, tick int, reason string) error {
	return oops.Code(CodeInvalidIntent).
		With("tool", tool).
		With("actor", actorID).
		With("tick", tick).
		With("reason", reason).
		Errorf("invalid intent: %s", reason)
}

// ErrTranslationFailure creates an error for free text that could not be
// turned into a command.
func ErrTranslationFailure(text string, cause error) error {
	builder := oops.Code(CodeTranslationFailure).With("text", text)
	if cause != nil {
		return builder.Wrap(cause)
	}
	return builder.Errorf("no command in translation")
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}

// Code returns the error code carried by err, or "" for plain errors.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		var code any = oopsErr.Code()
		if s, ok := code.(string); ok {
			return s
		}
	}
	return ""
}

// IsUnknownTool returns true if err is an UNKNOWN_TOOL error.
func IsUnknownTool(err error) bool { return hasCode(err, CodeUnknownTool) }

// IsActorBusy returns true if err is an ACTOR_BUSY error.
func IsActorBusy(err error) bool { return hasCode(err, CodeActorBusy) }

// IsInvalidIntent returns true if err is an INVALID_INTENT error.
func IsInvalidIntent(err error) bool { return hasCode(err, CodeInvalidIntent) }

// IsTranslationFailure returns true if err is a TRANSLATION_FAILURE error.
func IsTranslationFailure(err error) bool { return hasCode(err, CodeTranslationFailure) }

// reasonDead rejects every command from a dead character.
const reasonDead = "actor is dead"

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch oopsErr.Code() {
	case CodeUnknownTool:
		return "You don't know how to do that. Try 'help'."
	case CodeActorBusy:
		if next, ok := oopsErr.Context()["next_available_tick"].(int); ok {
			return fmt.Sprintf("You are still busy. You can act again at tick %d.", next)
		}
		return "You are still busy."
	case CodeInvalidIntent:
		if oopsErr.Context()["reason"] == reasonDead {
			return "You are dead."
		}
		return "You can't do that right now."
	case CodeTranslationFailure:
		return "I didn't understand that."
	default:
		return "Something went wrong. Try again."
	}
}
