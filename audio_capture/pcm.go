package audio_capture

import "encoding/binary"

const bytesPerSample = 2

// SamplesToBytes encodes 16-bit samples as little-endian PCM.
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(s))
	}
	return out
}

// BytesToSamples decodes little-endian PCM into 16-bit samples. A trailing
// odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	out := make([]int16, len(data)/bytesPerSample)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*bytesPerSample:]))
	}
	return out
}
