package dice

// Scripted is a Roller that replays predetermined die faces in order,
// cycling when exhausted. A face is clamped into the range of the die being
// rolled. It exists for tests and scripted demos where the outcome of a
// roll must be forced.
type Scripted struct {
	Faces []int
	next  int
}

// NewScripted returns a Roller that yields the given faces in order.
func NewScripted(faces ...int) *Scripted {
	return &Scripted{Faces: faces}
}

// IntN returns the next scripted face minus one, so that Die returns the
// face itself.
func (s *Scripted) IntN(n int) int {
	if len(s.Faces) == 0 || n <= 0 {
		return 0
	}
	face := s.Faces[s.next%len(s.Faces)]
	s.next++
	switch {
	case face < 1:
		return 0
	case face > n:
		return n - 1
	}
	return face - 1
}

// Drawn reports how many faces have been consumed.
func (s *Scripted) Drawn() int {
	return s.next
}
