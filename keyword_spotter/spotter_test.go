package keyword_spotter

import (
	"errors"
	"testing"

	"keyword-assistant/errorsx"

	"github.com/spf13/afero"
)

// scriptedDecoder replays canned steps, one per chunk.
type scriptedDecoder struct {
	steps  []Step
	calls  int
	err    error
	closed bool
}

func (d *scriptedDecoder) Step(chunk []byte) (Step, error) {
	if d.err != nil {
		return Step{}, d.err
	}
	var step Step
	if d.calls < len(d.steps) {
		step = d.steps[d.calls]
	}
	d.calls++
	return step, nil
}

func (d *scriptedDecoder) Close() error {
	d.closed = true
	return nil
}

func newSpotter(t *testing.T, keyword string, steps ...Step) (Interface, *scriptedDecoder) {
	t.Helper()
	decoder := &scriptedDecoder{steps: steps}
	spotter, err := New(&Config{Decoder: decoder, Keyword: keyword})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return spotter, decoder
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := New(&Config{Keyword: "computer"}); err == nil {
		t.Fatalf("expected error for nil decoder")
	}
	if _, err := New(&Config{Decoder: &scriptedDecoder{}}); err == nil {
		t.Fatalf("expected error for empty keyword")
	}
}

func TestProcessFinalized(t *testing.T) {
	spotter, decoder := newSpotter(t, "computer",
		Step{Partial: "please"},
		Step{Partial: "please wake"},
		Step{Finalized: true, Final: "please wake up computer now"},
	)

	for i := 0; i < 2; i++ {
		detected, err := spotter.Process([]byte{0, 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if detected {
			t.Fatalf("unexpected detection on chunk %d", i)
		}
	}

	detected, err := spotter.Process([]byte{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detected {
		t.Fatalf("expected detection on finalizing chunk")
	}
	if decoder.calls != 3 {
		t.Fatalf("expected 3 decoder steps, got %d", decoder.calls)
	}
}

func TestProcessPartial(t *testing.T) {
	spotter, _ := newSpotter(t, "computer", Step{Partial: "hey computer"})

	detected, err := spotter.Process([]byte{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detected {
		t.Fatalf("expected detection from partial transcript")
	}
}

func TestProcessNoFalsePositive(t *testing.T) {
	spotter, _ := newSpotter(t, "computer",
		Step{Partial: "compute"},
		Step{Finalized: true, Final: "Computer please"},
		Step{Partial: "com puter"},
		Step{Finalized: true, Final: "the com"},
		Step{},
	)

	for i := 0; i < 5; i++ {
		detected, err := spotter.Process([]byte{0, 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if detected {
			t.Fatalf("false positive on chunk %d", i)
		}
	}
}

func TestProcessDecoderError(t *testing.T) {
	decoder := &scriptedDecoder{err: errors.New("decoder broke")}
	spotter, _ := New(&Config{Decoder: decoder, Keyword: "computer"})

	if _, err := spotter.Process([]byte{0, 0}); !errorsx.HasReason(err, errorsx.ReasonRecognition) {
		t.Fatalf("expected recognition error, got %v", err)
	}

	_ = spotter.Close()
	if !decoder.closed {
		t.Fatalf("expected decoder closed")
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name string
		step Step
		want bool
	}{
		{"final contains", Step{Finalized: true, Final: "ok computer"}, true},
		{"final text ignored unless finalized", Step{Final: "ok computer"}, false},
		{"partial contains", Step{Partial: "computer"}, true},
		{"final misses, partial hits", Step{Finalized: true, Final: "ok", Partial: "computer"}, true},
		{"case sensitive", Step{Finalized: true, Final: "COMPUTER"}, false},
		{"empty", Step{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match("computer", tc.step); got != tc.want {
				t.Fatalf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewVoskDecoderMissingModel(t *testing.T) {
	_, err := NewVoskDecoder(afero.NewMemMapFs(), "models/vosk-model-small-en-us", 16000)
	if !errorsx.HasReason(err, errorsx.ReasonModelLoad) {
		t.Fatalf("expected model_load error, got %v", err)
	}
}

func TestParseResult(t *testing.T) {
	final, err := parseResult(`{"text" : "please wake up computer now"}`)
	if err != nil || final.Text != "please wake up computer now" {
		t.Fatalf("unexpected final %+v, %v", final, err)
	}

	partial, err := parseResult(`{"partial" : "please wake"}`)
	if err != nil || partial.Partial != "please wake" {
		t.Fatalf("unexpected partial %+v, %v", partial, err)
	}

	if _, err := parseResult("not json"); !errorsx.HasReason(err, errorsx.ReasonRecognition) {
		t.Fatalf("expected recognition error, got %v", err)
	}
}
