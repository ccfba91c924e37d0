package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/oklog/ulid/v2"
)

// Kind identifies what an event does. The set is closed: every kind the
// engine understands is declared below.
type Kind string

const (
	KindMove             Kind = "move"
	KindDescribeLocation Kind = "describe_location"
	KindGrab             Kind = "grab"
	KindDrop             Kind = "drop"
	KindEat              Kind = "eat"
	KindAttackAttempt    Kind = "attack_attempt"
	KindAttackHit        Kind = "attack_hit"
	KindAttackMissed     Kind = "attack_missed"
	KindDamageApplied    Kind = "damage_applied"
	KindNPCDied          Kind = "npc_died"
	KindTalk             Kind = "talk"
	KindTalkLoud         Kind = "talk_loud"
	KindScream           Kind = "scream"
	KindEquip            Kind = "equip"
	KindUnequip          Kind = "unequip"
	KindGive             Kind = "give"
	KindRest             Kind = "rest"
	KindWait             Kind = "wait"
	KindOpenConnection   Kind = "open_connection"
	KindCloseConnection  Kind = "close_connection"
	KindAnalyze          Kind = "analyze"
	KindInventory        Kind = "inventory"
	KindStats            Kind = "stats"
	KindToggleStarvation Kind = "toggle_starvation"
)

var allKinds = []Kind{
	KindMove, KindDescribeLocation, KindGrab, KindDrop, KindEat,
	KindAttackAttempt, KindAttackHit, KindAttackMissed, KindDamageApplied,
	KindNPCDied, KindTalk, KindTalkLoud, KindScream, KindEquip, KindUnequip,
	KindGive, KindRest, KindWait, KindOpenConnection, KindCloseConnection,
	KindAnalyze, KindInventory, KindStats, KindToggleStarvation,
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	return slices.Clone(allKinds)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return slices.Contains(allKinds, k)
}

func (k Kind) String() string {
	return string(k)
}

// UnmarshalJSON rejects kinds outside the declared set.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed := Kind(s)
	if !parsed.Valid() {
		return fmt.Errorf("unknown event kind: %q", s)
	}
	*k = parsed
	return nil
}

// Payload is the open, kind-specific data bag carried by an event.
type Payload map[string]any

// Event is an immutable, tick-stamped record of something that happens in
// the world. Build events with New; never modify one after creation.
type Event struct {
	ID        ulid.ULID `json:"id"`
	Kind      Kind      `json:"kind"`
	Tick      int       `json:"tick"`
	ActorID   string    `json:"actor_id"`
	TargetIDs []string  `json:"target_ids,omitempty"`
	Payload   Payload   `json:"payload,omitempty"`
}

// New creates an event, copying targets and payload so the caller's slices
// and maps can't alias the record.
func New(kind Kind, tick int, actorID string, targets []string, payload Payload) Event {
	e := Event{
		ID:      ulid.Make(),
		Kind:    kind,
		Tick:    tick,
		ActorID: actorID,
	}
	if len(targets) > 0 {
		e.TargetIDs = slices.Clone(targets)
	}
	if len(payload) > 0 {
		e.Payload = maps.Clone(payload)
	}
	return e
}

// Target returns the i-th target id, or "" when absent.
func (e Event) Target(i int) string {
	if i < 0 || i >= len(e.TargetIDs) {
		return ""
	}
	return e.TargetIDs[i]
}

// Int reads an integer payload value. JSON numbers decode as float64, so
// integral floats are accepted too. Values outside the int range are
// rejected.
func (p Payload) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		if v >= math.MinInt && v <= math.MaxInt {
			return int(v), true
		}
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive
		if v == math.Trunc(v) && v >= math.MinInt && v < math.MaxInt {
			return int(v), true
		}
	case json.Number:
		n, err := v.Int64()
		if err == nil && n >= math.MinInt && n <= math.MaxInt {
			return int(n), true
		}
	}
	return 0, false
}

// String reads a string payload value.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool reads a boolean payload value.
func (p Payload) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Strings reads a string list payload value, accepting []any from JSON.
func (p Payload) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
