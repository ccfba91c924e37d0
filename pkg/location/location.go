package location

import (
	"maps"
	"slices"
)

// Status is the state of a connection between two neighboring locations.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Tags holds a location's inherent tags.
type Tags struct {
	Inherent []string `json:"inherent"`
}

// Static is the immutable description of a place: its text, its tags and
// which hex neighbor lies in each direction.
type Static struct {
	ID             string            `json:"id"`
	Description    string            `json:"description"`
	Tags           Tags              `json:"tags"`
	HexConnections map[string]string `json:"hex_connections"` // direction -> neighbor id
}

// Neighbors returns the ids of every hex neighbor, sorted and deduplicated.
func (s *Static) Neighbors() []string {
	return slices.Compact(slices.Sorted(maps.Values(s.HexConnections)))
}

// IsNeighbor reports whether id is a direct hex neighbor.
func (s *Static) IsNeighbor(id string) bool {
	for _, n := range s.HexConnections {
		if n == id {
			return true
		}
	}
	return false
}

// Direction returns the direction label leading to neighbor.
func (s *Static) Direction(neighbor string) (string, bool) {
	for dir, n := range s.HexConnections {
		if n == neighbor {
			return dir, true
		}
	}
	return "", false
}

// Connection records the status of the edge to one neighbor.
type Connection struct {
	Status Status `json:"status"`
}

// State is the mutable part of a location.
type State struct {
	ID               string                `json:"id"`
	Occupants        []string              `json:"occupants"`
	Items            []string              `json:"items"`
	Sublocations     []string              `json:"sublocations,omitempty"`
	TransientEffects []string              `json:"transient_effects,omitempty"`
	Connections      map[string]Connection `json:"connections_state,omitempty"` // neighbor id -> connection
}

// ApplyDefaults initialises nil collections.
func (s *State) ApplyDefaults() {
	if s.Occupants == nil {
		s.Occupants = []string{}
	}
	if s.Items == nil {
		s.Items = []string{}
	}
	if s.Connections == nil {
		s.Connections = make(map[string]Connection)
	}
}

// ConnectionStatus returns the status toward neighbor. A missing entry is open.
func (s *State) ConnectionStatus(neighbor string) Status {
	if c, ok := s.Connections[neighbor]; ok && c.Status != "" {
		return c.Status
	}
	return StatusOpen
}

// SetConnectionStatus records the status toward neighbor.
func (s *State) SetConnectionStatus(neighbor string, status Status) {
	if s.Connections == nil {
		s.Connections = make(map[string]Connection)
	}
	s.Connections[neighbor] = Connection{Status: status}
}

func (s *State) HasOccupant(id string) bool {
	return slices.Contains(s.Occupants, id)
}

// AddOccupant appends id unless it is already present.
func (s *State) AddOccupant(id string) {
	if !s.HasOccupant(id) {
		s.Occupants = append(s.Occupants, id)
	}
}

// RemoveOccupant removes id, reporting whether it was present.
func (s *State) RemoveOccupant(id string) bool {
	return remove(&s.Occupants, id)
}

func (s *State) HasItem(id string) bool {
	return slices.Contains(s.Items, id)
}

// AddItem appends id unless it is already present.
func (s *State) AddItem(id string) {
	if !s.HasItem(id) {
		s.Items = append(s.Items, id)
	}
}

// RemoveItem removes id, reporting whether it was present.
func (s *State) RemoveItem(id string) bool {
	return remove(&s.Items, id)
}

func remove(list *[]string, id string) bool {
	i := slices.Index(*list, id)
	if i < 0 {
		return false
	}
	*list = slices.Delete(*list, i, i+1)
	return true
}
