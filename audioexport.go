package partials

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

// Wav converts the buffer into a stereo .wav file, either as int16 (pcm16 =
// true) or as float32 samples.
func (buffer AudioBuffer) Wav(pcm16 bool, sampleRate int) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(len(buffer)*2, pcm16, sampleRate, buf)
	err := rawToBuffer(buffer.interleaved(), pcm16, buf)
	if err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

// Raw converts the buffer into interleaved little-endian int16 or float32
// samples, without any header.
func (buffer AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := rawToBuffer(buffer.interleaved(), pcm16, buf)
	if err != nil {
		return nil, fmt.Errorf("Raw failed: %v", err)
	}
	return buf.Bytes(), nil
}

// Peak returns the largest absolute sample value of the buffer. Values above
// 1 clip when written to a sink.
func (buffer AudioBuffer) Peak() float32 {
	if len(buffer) == 0 {
		return 0
	}
	data := buffer.interleaved()
	vek32.Abs_Inplace(data)
	return vek32.Max(data)
}

func (buffer AudioBuffer) interleaved() []float32 {
	ret := make([]float32, 0, len(buffer)*2)
	for _, frame := range buffer {
		ret = append(ret, frame[0], frame[1])
	}
	return ret
}

func rawToBuffer(data []float32, pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		int16data := make([]int16, len(data))
		for i, v := range data {
			int16data[i] = int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, data)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return nil
}

// wavHeader writes a wave header for either float32 or int16 .wav file into
// the bytes.buffer. bufferLength is the number of samples, counting both
// channels, so the number of frames is bufferLength / 2.
func wavHeader(bufferLength int, pcm16 bool, sampleRate int, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	numChannels := 2
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*bufferLength
		fmtChunkSize = 16
		waveFormat = 1 // PCM
		factChunk = false
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*bufferLength
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	binary.Write(buf, binary.LittleEndian, uint16(waveFormat))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // size of extension
	}
	if factChunk {
		buf.Write([]byte("fact"))
		binary.Write(buf, binary.LittleEndian, uint32(4))              // fact chunk size
		binary.Write(buf, binary.LittleEndian, uint32(bufferLength/2)) // frames per channel
	}
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*bufferLength))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
