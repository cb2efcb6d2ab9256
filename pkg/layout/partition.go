// Package layout splits an ordered image sequence into the groups rendered by
// each section of the page.
//
// Every function here is pure: the source slice is never written to and the
// returned groups are fresh copies, so callers may hand the same manifest to
// several partitions at once.
package layout

import (
	"errors"
	"fmt"
)

// Strategy kinds
const (
	KindContiguous = "contiguous"
	KindRoundRobin = "round-robin"
	KindChunk      = "chunk"
)

// ErrUnknownStrategy is returned when a strategy kind is not recognised
var ErrUnknownStrategy = errors.New("unknown partition strategy")

// Strategy describes how a sequence is split into groups
type Strategy struct {
	Kind      string `json:"kind" yaml:"kind" toml:"kind"`
	Sizes     []int  `json:"sizes,omitempty" yaml:"sizes" toml:"sizes"`
	Buckets   int    `json:"buckets,omitempty" yaml:"buckets" toml:"buckets"`
	ChunkSize int    `json:"chunkSize,omitempty" yaml:"chunkSize" toml:"chunkSize"`
	Limit     int    `json:"limit,omitempty" yaml:"limit" toml:"limit"`
}

// Validate checks that the strategy can be applied
func (s Strategy) Validate() error {
	switch s.Kind {
	case KindContiguous:
		if len(s.Sizes) == 0 {
			return fmt.Errorf("%s: no group sizes", s.Kind)
		}
	case KindRoundRobin:
		if s.Buckets <= 0 {
			return fmt.Errorf("%s: buckets must be positive, got %d", s.Kind, s.Buckets)
		}
	case KindChunk:
		if s.ChunkSize <= 0 {
			return fmt.Errorf("%s: chunk size must be positive, got %d", s.Kind, s.ChunkSize)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, s.Kind)
	}
	return nil
}

// Partition applies the strategy to seq
func Partition[T any](seq []T, s Strategy) ([][]T, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Kind {
	case KindRoundRobin:
		return RoundRobin(seq, s.Buckets), nil
	case KindChunk:
		return Chunk(seq, s.ChunkSize, s.Limit), nil
	default:
		return Contiguous(seq, s.Sizes...), nil
	}
}

// Contiguous produces consecutive, non-overlapping slices of the given sizes.
// A group is short when the source runs out; items beyond the last group are dropped.
func Contiguous[T any](seq []T, sizes ...int) [][]T {
	groups := make([][]T, len(sizes))
	pos := 0
	for i, n := range sizes {
		n = max(n, 0)
		end := min(pos+n, len(seq))
		groups[i] = clone(seq[pos:end])
		pos = end
	}
	return groups
}

// RoundRobin assigns item i to bucket i mod k, keeping relative order inside each bucket
func RoundRobin[T any](seq []T, k int) [][]T {
	if k <= 0 {
		return nil
	}
	groups := make([][]T, k)
	for i := range groups {
		groups[i] = make([]T, 0, (len(seq)+k-1-i)/k)
	}
	for i, item := range seq {
		groups[i%k] = append(groups[i%k], item)
	}
	return groups
}

// Chunk splits the first limit items of seq into groups of size items.
// A limit of zero or less means the whole sequence.
func Chunk[T any](seq []T, size, limit int) [][]T {
	if size <= 0 {
		return nil
	}
	if limit > 0 && limit < len(seq) {
		seq = seq[:limit]
	}
	groups := make([][]T, 0, (len(seq)+size-1)/size)
	for i := 0; i < len(seq); i += size {
		groups = append(groups, clone(seq[i:min(i+size, len(seq))]))
	}
	return groups
}

// Window returns a copy of seq[from:to], tolerating bounds outside the sequence
func Window[T any](seq []T, from, to int) []T {
	from = max(from, 0)
	to = min(to, len(seq))
	if from >= to {
		return []T{}
	}
	return clone(seq[from:to])
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
