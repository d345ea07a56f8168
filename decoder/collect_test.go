package decoder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriform-go/veriform/decoder"
)

func TestCollectSequencePreservesOrder(t *testing.T) {
	input := buildUint64Sequence([]uint64{10, 20, 30, 40, 50})
	d := decoder.New()
	u := &uintSeq{}
	require.NoError(t, decoder.Decode(d, input, u))

	out, err := decoder.CollectSequence(context.Background(), u.Values, 3, func(_ context.Context, v uint64) (uint64, error) {
		return v * 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{20, 40, 60, 80, 100}, out)
}

func TestCollectSequenceSerialMatchesConcurrent(t *testing.T) {
	elements := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	double := func(_ context.Context, v uint64) (uint64, error) { return v * 2, nil }

	serial, err := decoder.CollectSequence(context.Background(), elements, 1, double)
	require.NoError(t, err)

	concurrent, err := decoder.CollectSequence(context.Background(), elements, 4, double)
	require.NoError(t, err)

	assert.Equal(t, serial, concurrent)
}

func TestCollectSequencePropagatesFirstError(t *testing.T) {
	elements := []uint64{1, 2, 3}
	boom := errors.New("boom")

	_, err := decoder.CollectSequence(context.Background(), elements, 2, func(_ context.Context, v uint64) (uint64, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	require.ErrorIs(t, err, boom)
}
