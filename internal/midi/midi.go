// Package midi converts between detected note events and standard MIDI
// files, so transcriptions can be downloaded and re-imported.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/pianoscribe/api/internal/notation"
)

const ticksPerQuarter = 960

// WriteEvents renders note events into a single-track SMF at the given
// tempo and returns the file bytes.
func WriteEvents(events []notation.NoteEvent, tempo float64) ([]byte, error) {
	if tempo <= 0 {
		return nil, fmt.Errorf("midi write: %w", notation.ErrInvalidTempo)
	}

	clock := smf.MetricTicks(ticksPerQuarter)

	type timedMessage struct {
		tick uint32
		off  bool
		msg  smf.Message
	}

	var msgs []timedMessage
	for _, ev := range events {
		if ev.Pitch < 0 || ev.Pitch > 127 {
			continue
		}
		vel := ev.Velocity
		if vel < 1 {
			vel = 1
		}
		if vel > 127 {
			vel = 127
		}
		onTick := clock.Ticks(tempo, time.Duration(ev.Onset*float64(time.Second)))
		offTick := clock.Ticks(tempo, time.Duration((ev.Onset+ev.Duration)*float64(time.Second)))
		if offTick <= onTick {
			offTick = onTick + 1
		}
		msgs = append(msgs, timedMessage{tick: onTick, msg: smf.Message(midi.NoteOn(0, uint8(ev.Pitch), uint8(vel)))})
		msgs = append(msgs, timedMessage{tick: offTick, off: true, msg: smf.Message(midi.NoteOff(0, uint8(ev.Pitch)))})
	}

	// Note-offs before note-ons at the same tick, so re-struck notes don't
	// get swallowed.
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(tempo))

	var cursor uint32
	for _, m := range msgs {
		tr.Add(m.tick-cursor, m.msg)
		cursor = m.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = clock
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("midi write: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("midi write: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadEvents parses an SMF and pairs note-on/note-off messages into note
// events ordered by onset then pitch. The smf reader can panic on
// truncated files, so parsing is wrapped in a recover.
func ReadEvents(data []byte) (events []notation.NoteEvent, err error) {
	defer func() {
		if r, ok := recover().(string); ok {
			err = errors.New(r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("midi parse: %w", err)
	}

	type openNote struct {
		start    float64
		velocity uint8
	}

	for _, track := range s.Tracks {
		pressed := make(map[uint8]openNote)
		var absTicks int64

		for _, event := range track {
			absTicks += int64(event.Delta)
			seconds := float64(s.TimeAt(absTicks)) / 1e6

			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				pressed[key] = openNote{start: seconds, velocity: velocity}
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				on, ok := pressed[key]
				if !ok {
					continue
				}
				delete(pressed, key)
				if seconds <= on.start {
					continue
				}
				events = append(events, notation.NoteEvent{
					Pitch:    int(key),
					Onset:    on.start,
					Duration: seconds - on.start,
					Velocity: int(on.velocity),
				})
			}
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Onset != events[j].Onset {
			return events[i].Onset < events[j].Onset
		}
		return events[i].Pitch < events[j].Pitch
	})

	return events, nil
}
