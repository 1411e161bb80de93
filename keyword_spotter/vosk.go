package keyword_spotter

import (
	"encoding/json"
	"fmt"

	"keyword-assistant/errorsx"

	vosk "github.com/alphacep/vosk-api/go"
	"github.com/spf13/afero"
)

type voskDecoder struct {
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

type voskResult struct {
	Text    string `json:"text"`
	Partial string `json:"partial"`
}

// NewVoskDecoder loads the vosk model directory at modelPath.
func NewVoskDecoder(fileSys afero.Fs, modelPath string, sampleRate float64) (Decoder, error) {
	ok, err := afero.DirExists(fileSys, modelPath)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("stat model %s: %w", modelPath, err), errorsx.ReasonModelLoad)
	}

	if !ok {
		return nil, errorsx.New(errorsx.ReasonModelLoad, "model directory %s does not exist", modelPath)
	}

	vosk.SetLogLevel(-1)

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("load model %s: %w", modelPath, err), errorsx.ReasonModelLoad)
	}

	recognizer, err := vosk.NewRecognizer(model, sampleRate)
	if err != nil {
		model.Free()

		return nil, errorsx.Wrap(fmt.Errorf("create recognizer: %w", err), errorsx.ReasonModelLoad)
	}

	return &voskDecoder{
		model:      model,
		recognizer: recognizer,
	}, nil
}

func (d *voskDecoder) Step(chunk []byte) (Step, error) {
	var step Step

	status := d.recognizer.AcceptWaveform(chunk)
	if status < 0 {
		return step, errorsx.New(errorsx.ReasonRecognition, "recognizer rejected %d bytes", len(chunk))
	}

	if status > 0 {
		final, err := parseResult(d.recognizer.Result())
		if err != nil {
			return step, err
		}

		step.Finalized = true
		step.Final = final.Text
	}

	partial, err := parseResult(d.recognizer.PartialResult())
	if err != nil {
		return step, err
	}

	step.Partial = partial.Partial

	return step, nil
}

func (d *voskDecoder) Close() error {
	d.recognizer.Free()
	d.model.Free()

	return nil
}

func parseResult(raw string) (voskResult, error) {
	var result voskResult

	err := json.Unmarshal([]byte(raw), &result)
	if err != nil {
		return result, errorsx.Wrap(fmt.Errorf("parse recognizer result: %w", err), errorsx.ReasonRecognition)
	}

	return result, nil
}
