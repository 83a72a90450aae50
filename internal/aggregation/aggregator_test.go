package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waferplot/domain/measurement"
)

func TestIngestIsIdempotent(t *testing.T) {
	once := NewAggregator()
	once.Ingest("LVT", measurement.ChannelN, samples(1, 0.5))

	twice := NewAggregator()
	twice.Ingest("LVT", measurement.ChannelN, samples(1, 0.5))
	twice.Ingest("LVT", measurement.ChannelN, samples(1, 0.5))

	assert.Equal(t,
		once.Finalize().Series("LVT", measurement.ChannelN),
		twice.Finalize().Series("LVT", measurement.ChannelN))
}

func TestIngestLastWriteWins(t *testing.T) {
	agg := NewAggregator()
	agg.Ingest("LVT", measurement.ChannelN, samples(1, 0.5, 2, 0.6))
	agg.Ingest("LVT", measurement.ChannelN, samples(1, 0.9))

	s := agg.Finalize().Series("LVT", measurement.ChannelN)
	require.Len(t, s, 2)

	v, ok := s.Value(num(1))
	require.True(t, ok)
	assert.Equal(t, 0.9, v)

	v, ok = s.Value(num(2))
	require.True(t, ok)
	assert.Equal(t, 0.6, v)
}

func TestIngestTextAndNumericLabelsMerge(t *testing.T) {
	agg := NewAggregator()
	agg.Ingest("RVT", measurement.ChannelP, []measurement.Sample{{Index: measurement.ParseLabel("3.0"), Value: 1}})
	agg.Ingest("RVT", measurement.ChannelP, []measurement.Sample{{Index: num(3), Value: 2}})

	s := agg.Finalize().Series("RVT", measurement.ChannelP)
	require.Len(t, s, 1)
	v, _ := s.Value(num(3))
	assert.Equal(t, 2.0, v)
}

func TestChannelsAreIndependent(t *testing.T) {
	agg := NewAggregator()
	agg.Ingest("LVT", measurement.ChannelN, samples(1, 1))
	agg.Ingest("LVT", measurement.ChannelP, samples(1, 10))
	agg.Ingest("RVT", measurement.ChannelN, samples(2, 2))

	set := agg.Finalize()
	assert.Equal(t, []string{"LVT", "RVT"}, set.Codes())
	assert.Nil(t, set.Series("RVT", measurement.ChannelP))

	v, _ := set.Series("LVT", measurement.ChannelP).Value(num(1))
	assert.Equal(t, 10.0, v)
}

func TestIngestAfterFinalizePanics(t *testing.T) {
	agg := NewAggregator()
	agg.Finalize()
	assert.Panics(t, func() {
		agg.Ingest("LVT", measurement.ChannelN, samples(1, 1))
	})
}
