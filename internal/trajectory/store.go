package trajectory

import "fmt"

// Store aggregates all tracks of one recording session.
//
// Tracks are kept in insertion order so that encoding is deterministic:
// the same recording always serializes to byte-identical documents.
type Store struct {
	tracks map[string]*Track
	order  []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tracks: make(map[string]*Track)}
}

// Add inserts a track into the store. Track names are unique; adding a
// duplicate name is an error.
func (s *Store) Add(t *Track) error {
	if _, exists := s.tracks[t.Name]; exists {
		return fmt.Errorf("duplicate track %q", t.Name)
	}
	s.tracks[t.Name] = t
	s.order = append(s.order, t.Name)
	return nil
}

// Track looks up a track by name. The name is NFC normalized before
// lookup, matching track creation.
func (s *Store) Track(name string) (*Track, bool) {
	t, ok := s.tracks[NormalizeName(name)]
	return t, ok
}

// Tracks returns all tracks in insertion order.
func (s *Store) Tracks() []*Track {
	out := make([]*Track, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tracks[name])
	}
	return out
}

// Len returns the number of tracks.
func (s *Store) Len() int {
	return len(s.order)
}

// DurationMs returns the recording duration: the maximum final-sample
// timestamp over all tracks, or 0 for an empty store.
func (s *Store) DurationMs() int64 {
	var max int64
	for _, t := range s.tracks {
		if end := t.EndMs(); end > max {
			max = end
		}
	}
	return max
}

// SampleCount returns the total number of samples across all tracks.
func (s *Store) SampleCount() int {
	var n int
	for _, t := range s.tracks {
		n += t.Len()
	}
	return n
}
