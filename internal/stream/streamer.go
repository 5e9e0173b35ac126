package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/emirpasic/gods/v2/trees/redblacktree"

	"github.com/born-ml/chainnet/internal/layer"
)

// Chunk is one upload unit: up to maxLen fixed-point scalars destined for
// one layer instance, starting at Offset within that instance's weights.
type Chunk struct {
	Kind     layer.Kind
	Instance int
	Offset   int
	Scalars  []int64
}

// Key identifies a layer instance: the n-th layer of a kind in declaration
// order.
type Key struct {
	Kind     layer.Kind
	Instance int
}

func compareKeys(a, b Key) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return a.Instance - b.Instance
}

type pending struct {
	scalars []int64
	offset  int
}

// Streamer slices queued layer weights into bounded chunks.
//
// The zero value is not usable; call NewStreamer.
type Streamer struct {
	queue  *redblacktree.Tree[Key, *pending]
	totals map[layer.Kind]int
}

// NewStreamer returns an empty streamer.
func NewStreamer() *Streamer {
	return &Streamer{
		queue:  redblacktree.NewWith[Key, *pending](compareKeys),
		totals: make(map[layer.Kind]int),
	}
}

// Queue registers the flattened weights of one layer instance. capacities
// are its slot sizes; their sum must equal len(scalars).
func (s *Streamer) Queue(kind layer.Kind, instance int, capacities []int, scalars []int64) error {
	key := Key{Kind: kind, Instance: instance}
	if _, found := s.queue.Get(key); found {
		return fmt.Errorf("%s #%d: %w", kind, instance, ErrDuplicateInstance)
	}

	want := 0
	for _, c := range capacities {
		want += c
	}
	if want != len(scalars) {
		return &CountMismatchError{Kind: kind, Instance: instance, Expected: want, Got: len(scalars)}
	}

	s.queue.Put(key, &pending{scalars: slices.Clone(scalars)})
	s.totals[kind] += len(scalars)
	slog.Debug("queued layer weights", "kind", kind, "instance", instance, "scalars", len(scalars))
	return nil
}

// NextChunk pops up to maxLen scalars from the first instance, in
// kind-then-instance order, that still has any. It returns false once
// everything has been drained.
func (s *Streamer) NextChunk(maxLen int) (Chunk, bool) {
	if maxLen <= 0 {
		panic(fmt.Sprintf("stream: maxLen must be positive, got %d", maxLen))
	}

	for !s.queue.Empty() {
		node := s.queue.Left()
		p := node.Value
		if p.offset == len(p.scalars) {
			s.queue.Remove(node.Key)
			continue
		}

		end := min(p.offset+maxLen, len(p.scalars))
		chunk := Chunk{
			Kind:     node.Key.Kind,
			Instance: node.Key.Instance,
			Offset:   p.offset,
			Scalars:  slices.Clone(p.scalars[p.offset:end]),
		}
		p.offset = end
		if p.offset == len(p.scalars) {
			s.queue.Remove(node.Key)
		}
		return chunk, true
	}
	return Chunk{}, false
}

// Drain returns all remaining chunks.
func (s *Streamer) Drain(maxLen int) []Chunk {
	var chunks []Chunk
	for {
		c, ok := s.NextChunk(maxLen)
		if !ok {
			return chunks
		}
		chunks = append(chunks, c)
	}
}

// Remaining returns the number of queued scalars not yet emitted.
func (s *Streamer) Remaining() int {
	n := 0
	it := s.queue.Iterator()
	for it.Next() {
		p := it.Value()
		n += len(p.scalars) - p.offset
	}
	return n
}

// Totals returns the number of scalars queued per kind.
func (s *Streamer) Totals() map[layer.Kind]int {
	out := make(map[layer.Kind]int, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}

// Verify compares the queued per-kind totals against expected. Every
// differing kind is reported as a *CountMismatchError; the errors are
// joined.
func (s *Streamer) Verify(expected map[layer.Kind]int) error {
	var errs []error
	for _, kind := range layer.Kinds() {
		want, got := expected[kind], s.totals[kind]
		if want != got {
			errs = append(errs, &CountMismatchError{Kind: kind, Instance: -1, Expected: want, Got: got})
		}
	}
	return errors.Join(errs...)
}
