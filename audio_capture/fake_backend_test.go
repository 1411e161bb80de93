package audio_capture

import "errors"

type fakeBackend struct {
	initialized int
	terminated  int
	opened      int
	openErr     error
	startErr    error
	readErrs    []error
	streams     []*fakeStream
}

func (b *fakeBackend) Initialize() error {
	b.initialized++
	return nil
}

func (b *fakeBackend) Terminate() error {
	b.terminated++
	return nil
}

func (b *fakeBackend) OpenStream(in []int16, sampleRate float64, channels int) (Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opened++
	s := &fakeStream{in: in, startErr: b.startErr, readErrs: b.readErrs}
	b.streams = append(b.streams, s)
	return s, nil
}

type fakeStream struct {
	in       []int16
	startErr error
	readErrs []error
	reads    int
	started  bool
	stopped  int
	closed   int
}

func (s *fakeStream) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeStream) Read() error {
	if !s.started {
		return errors.New("stream not running")
	}
	for i := range s.in {
		s.in[i] = int16(s.reads*len(s.in) + i)
	}
	var err error
	if s.reads < len(s.readErrs) {
		err = s.readErrs[s.reads]
	}
	s.reads++
	return err
}

func (s *fakeStream) Stop() error {
	s.stopped++
	s.started = false
	return nil
}

func (s *fakeStream) Close() error {
	s.closed++
	return nil
}
