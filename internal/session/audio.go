package session

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	AudioContentType = "audio/wav"
	AudioFilename    = "audio.wav"
)

// AudioFormat describes the raw PCM delivered by the capturer.
type AudioFormat struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}

// Audio is one finished recording: the fragments of a session joined in
// capture order. It is assembled once, when the session stops.
type Audio struct {
	Data      []byte
	Format    AudioFormat
	CreatedAt time.Time
}

func assemble(fragments [][]byte, format AudioFormat) *Audio {
	total := 0
	for _, f := range fragments {
		total += len(f)
	}
	data := make([]byte, 0, total)
	for _, f := range fragments {
		data = append(data, f...)
	}
	return &Audio{Data: data, Format: format, CreatedAt: time.Now()}
}

// Size is the payload size, the sum of all fragment sizes.
func (a *Audio) Size() int { return len(a.Data) }

func (a *Audio) ContentType() string { return AudioContentType }

func (a *Audio) Filename() string { return AudioFilename }

// Duration derived from the payload size and format.
func (a *Audio) Duration() time.Duration {
	bytesPerSecond := a.Format.SampleRate * a.Format.Channels * a.Format.BitsPerSample / 8
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(len(a.Data)) * time.Second / time.Duration(bytesPerSecond)
}

// Encode wraps the PCM payload in a WAV container for upload.
func (a *Audio) Encode() ([]byte, error) {
	return a.WAV()
}

func (a *Audio) WAV() ([]byte, error) {
	f := a.Format
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 {
		return nil, fmt.Errorf("invalid audio format: %+v", f)
	}

	var buf bytes.Buffer
	byteRate := f.SampleRate * f.Channels * f.BitsPerSample / 8
	blockAlign := f.Channels * f.BitsPerSample / 8
	dataSize := len(a.Data)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))              // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))               // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))      // channels
	binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))    // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))        // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))      // block align
	binary.Write(&buf, binary.LittleEndian, uint16(f.BitsPerSample)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(a.Data)

	return buf.Bytes(), nil
}

// SaveTo writes the recording as a timestamped WAV file in dir.
func (a *Audio) SaveTo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create recordings dir: %w", err)
	}
	wav, err := a.WAV()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "recording-"+a.CreatedAt.Format("20060102-150405")+".wav")
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return "", fmt.Errorf("write recording: %w", err)
	}
	return path, nil
}
