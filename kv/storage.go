// Package kv holds the field lines of a message.
package kv

import (
	"iter"
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage keeps field lines in the order they arrived. Names are matched case-insensitively
// by a linear scan: messages rarely carry enough fields for a map to pay off.
type Storage struct {
	pairs   []Pair
	scratch []string
}

func New() *Storage {
	return new(Storage)
}

func NewPrealloc(n int) *Storage {
	return &Storage{pairs: make([]Pair, 0, n)}
}

// Add appends a field line. Repeated names are kept as separate lines.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{Key: key, Value: value})
	return s
}

// Get returns the value of the first line named key.
func (s *Storage) Get(key string) (string, bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Value is Get without the presence flag.
func (s *Storage) Value(key string) string {
	value, _ := s.Get(key)
	return value
}

func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Values returns the values of every line named key, or nil. The slice is reused by the
// next call.
func (s *Storage) Values(key string) []string {
	s.scratch = s.scratch[:0]
	for _, pair := range s.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			s.scratch = append(s.scratch, pair.Value)
		}
	}

	if len(s.scratch) == 0 {
		return nil
	}

	return s.scratch
}

// Join combines the values of repeated lines into a single comma-separated one, as a
// recipient is allowed to (RFC 9110, 5.3).
func (s *Storage) Join(key string) string {
	values := s.Values(key)
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ", ")
	}
}

// Iter yields the lines in arrival order.
func (s *Storage) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return len(s.pairs) == 0
}

// Clone copies the lines together with the strings they reference, so the clone outlives
// the buffers the original was collected into.
func (s *Storage) Clone() *Storage {
	clone := NewPrealloc(len(s.pairs))
	for _, pair := range s.pairs {
		clone.Add(strings.Clone(pair.Key), strings.Clone(pair.Value))
	}

	return clone
}

// Clear drops the lines, keeping the allocated space.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}
