package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainnet/internal/layer"
)

func scalars(n int, base int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = base + int64(i)
	}
	return out
}

func TestStreamer_Order(t *testing.T) {
	s := NewStreamer()

	// Queued out of order on purpose.
	require.NoError(t, s.Queue(layer.KindDense, 1, []int{2, 1}, scalars(3, 200)))
	require.NoError(t, s.Queue(layer.KindConv2D, 0, []int{4}, scalars(4, 500)))
	require.NoError(t, s.Queue(layer.KindDense, 0, []int{4, 1}, scalars(5, 100)))

	assert.Equal(t, 12, s.Remaining())

	chunks := s.Drain(3)

	type head struct {
		kind     layer.Kind
		instance int
		offset   int
		n        int
	}
	var got []head
	for _, c := range chunks {
		got = append(got, head{c.Kind, c.Instance, c.Offset, len(c.Scalars)})
	}
	assert.Equal(t, []head{
		{layer.KindDense, 0, 0, 3},
		{layer.KindDense, 0, 3, 2},
		{layer.KindDense, 1, 0, 3},
		{layer.KindConv2D, 0, 0, 3},
		{layer.KindConv2D, 0, 3, 1},
	}, got)

	assert.Equal(t, []int64{100, 101, 102}, chunks[0].Scalars)
	assert.Equal(t, 0, s.Remaining())

	_, ok := s.NextChunk(3)
	assert.False(t, ok)
}

func TestStreamer_ChunksRebuildCursor(t *testing.T) {
	caps := []int{6, 3}
	weights := scalars(9, 1)

	for _, maxLen := range []int{1, 2, 4, 9, 100} {
		s := NewStreamer()
		require.NoError(t, s.Queue(layer.KindDense, 0, caps, weights))

		c := NewCursor[int64](caps...)
		for {
			chunk, ok := s.NextChunk(maxLen)
			if !ok {
				break
			}
			assert.LessOrEqual(t, len(chunk.Scalars), maxLen)

			var err error
			c, err = c.AppendAt(chunk.Offset, chunk.Scalars)
			require.NoError(t, err)
		}
		assert.True(t, c.Done(), "maxLen %d", maxLen)
		assert.Equal(t, weights, c.Values(), "maxLen %d", maxLen)
	}
}

func TestStreamer_QueueErrors(t *testing.T) {
	s := NewStreamer()

	err := s.Queue(layer.KindDense, 0, []int{4, 2}, scalars(5, 0))
	var mismatch *CountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, CountMismatchError{Kind: layer.KindDense, Instance: 0, Expected: 6, Got: 5}, *mismatch)

	require.NoError(t, s.Queue(layer.KindDense, 0, []int{1}, scalars(1, 0)))
	assert.ErrorIs(t, s.Queue(layer.KindDense, 0, []int{1}, scalars(1, 0)), ErrDuplicateInstance)
}

func TestStreamer_Verify(t *testing.T) {
	s := NewStreamer()
	require.NoError(t, s.Queue(layer.KindDense, 0, []int{4, 2}, scalars(6, 0)))
	require.NoError(t, s.Queue(layer.KindEmbedding, 0, []int{8}, scalars(8, 0)))

	assert.NoError(t, s.Verify(map[layer.Kind]int{layer.KindDense: 6, layer.KindEmbedding: 8}))
	assert.Equal(t, map[layer.Kind]int{layer.KindDense: 6, layer.KindEmbedding: 8}, s.Totals())

	err := s.Verify(map[layer.Kind]int{layer.KindDense: 7, layer.KindEmbedding: 8, layer.KindLSTM: 4})
	require.Error(t, err)

	var mismatches []CountMismatchError
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var m *CountMismatchError
		require.True(t, errors.As(e, &m))
		mismatches = append(mismatches, *m)
	}
	assert.Equal(t, []CountMismatchError{
		{Kind: layer.KindDense, Instance: -1, Expected: 7, Got: 6},
		{Kind: layer.KindLSTM, Instance: -1, Expected: 4, Got: 0},
	}, mismatches)
}

func TestStreamer_NextChunkPanicsOnBadLength(t *testing.T) {
	assert.Panics(t, func() { NewStreamer().NextChunk(0) })
}
