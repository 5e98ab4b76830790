package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pianoscribe/api/internal/notation"
)

func TestWriteThenReadEvents(t *testing.T) {
	events := []notation.NoteEvent{
		{Pitch: 60, Onset: 0, Duration: 0.5, Velocity: 100},
		{Pitch: 64, Onset: 0, Duration: 0.5, Velocity: 95},
		{Pitch: 67, Onset: 0.5, Duration: 0.25, Velocity: 90},
	}

	data, err := WriteEvents(events, 120)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	parsed, err := ReadEvents(data)
	assert.NoError(t, err)
	assert.Len(t, parsed, 3)

	for i, ev := range parsed {
		assert.Equal(t, events[i].Pitch, ev.Pitch)
		assert.InDelta(t, events[i].Onset, ev.Onset, 0.01)
		assert.InDelta(t, events[i].Duration, ev.Duration, 0.01)
		assert.Equal(t, events[i].Velocity, ev.Velocity)
	}
}

func TestWriteEventsRejectsInvalidTempo(t *testing.T) {
	_, err := WriteEvents(nil, 0)
	assert.ErrorIs(t, err, notation.ErrInvalidTempo)
}

func TestWriteEventsSkipsOutOfRangePitches(t *testing.T) {
	events := []notation.NoteEvent{
		{Pitch: 200, Onset: 0, Duration: 0.5, Velocity: 100},
		{Pitch: 60, Onset: 0, Duration: 0.5, Velocity: 100},
	}

	data, err := WriteEvents(events, 120)
	assert.NoError(t, err)

	parsed, err := ReadEvents(data)
	assert.NoError(t, err)
	assert.Len(t, parsed, 1)
	assert.Equal(t, 60, parsed[0].Pitch)
}

func TestReadEventsRejectsGarbage(t *testing.T) {
	_, err := ReadEvents([]byte("not a midi file"))
	assert.Error(t, err)
}
