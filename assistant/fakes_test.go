package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"keyword-assistant/audio_capture"
	"keyword-assistant/keyword_spotter"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeBackend stands in for the sound card. It refuses a second concurrent
// session so tests catch a capture that was not released.
type fakeBackend struct {
	clock       *fakeClock
	sampleRate  float64
	active      int
	initialized int
	terminated  int
	opened      int
	openErr     error
	streams     []*fakeStream
}

func (b *fakeBackend) Initialize() error {
	if b.active > 0 {
		return errors.New("device busy")
	}
	b.active++
	b.initialized++
	return nil
}

func (b *fakeBackend) Terminate() error {
	b.active--
	b.terminated++
	return nil
}

func (b *fakeBackend) OpenStream(in []int16, sampleRate float64, channels int) (audio_capture.Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opened++
	b.sampleRate = sampleRate
	s := &fakeStream{in: in, clock: b.clock, sampleRate: sampleRate}
	b.streams = append(b.streams, s)
	return s, nil
}

type fakeStream struct {
	in         []int16
	clock      *fakeClock
	sampleRate float64
	running    bool
	reads      int
	stopped    int
	closed     int
}

func (s *fakeStream) Start() error {
	s.running = true
	return nil
}

func (s *fakeStream) Read() error {
	if !s.running {
		return errors.New("stream stopped")
	}
	s.reads++
	if s.clock != nil {
		s.clock.Advance(time.Duration(float64(len(s.in)) / s.sampleRate * float64(time.Second)))
	}
	return nil
}

func (s *fakeStream) Stop() error {
	s.running = false
	s.stopped++
	return nil
}

func (s *fakeStream) Close() error {
	s.closed++
	return nil
}

// scriptedDecoder finalizes text on a given chunk, or fails on one.
type scriptedDecoder struct {
	finalizeOn int
	final      string
	failOn     int
	calls      int
}

func (d *scriptedDecoder) Step(chunk []byte) (keyword_spotter.Step, error) {
	d.calls++
	if d.failOn > 0 && d.calls == d.failOn {
		return keyword_spotter.Step{}, errors.New("decoder failure")
	}
	if d.calls == d.finalizeOn {
		return keyword_spotter.Step{Finalized: true, Final: d.final}, nil
	}
	return keyword_spotter.Step{Partial: "please wake"}, nil
}

func (d *scriptedDecoder) Close() error { return nil }

type fakeTranscriber struct {
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f.calls = append(f.calls, path)
	if err := f.errs[path]; err != nil {
		return "", err
	}
	return f.texts[path], nil
}

type fakeBot struct {
	calls    int
	command  string
	input    string
	response string
	err      error
}

func (b *fakeBot) Respond(ctx context.Context, command string, input string) (string, error) {
	b.calls++
	b.command = command
	b.input = input
	return b.response, b.err
}
