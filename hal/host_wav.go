//go:build !tinygo

package hal

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// WAVSource replays a 16-bit PCM recording in a loop, resampled to the
// converter rate by holding the nearest earlier sample. Only the first
// channel of every frame is used.
type WAVSource struct {
	mu    sync.Mutex
	pcm   []int16
	rate  float64
	pos   float64
	ratio float64
}

// OpenWAV loads the recording at path for a converter running at rate.
func OpenWAV(path string, rate float64) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWAV(f, rate)
}

// ReadWAV loads a recording from r for a converter running at rate.
func ReadWAV(r io.ReadSeeker, rate float64) (*WAVSource, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("wav: invalid converter rate %v", rate)
	}
	wi, err := parseWAV(r)
	if err != nil {
		return nil, err
	}
	if wi.bits != 16 {
		return nil, fmt.Errorf("wav: only 16-bit samples are supported (bits=%d)", wi.bits)
	}
	if wi.channels == 0 || wi.sampleRate == 0 {
		return nil, fmt.Errorf("wav: bad format (channels=%d rate=%d)", wi.channels, wi.sampleRate)
	}
	if _, err := r.Seek(wi.dataOff, io.SeekStart); err != nil {
		return nil, err
	}

	frameBytes := int(wi.channels) * 2
	frames := int(wi.dataSize) / frameBytes
	if frames == 0 {
		return nil, fmt.Errorf("wav: no samples")
	}
	raw := make([]byte, frames*frameBytes)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("wav: read samples: %w", err)
	}
	pcm := make([]int16, frames)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*frameBytes:]))
	}

	return &WAVSource{
		pcm:   pcm,
		rate:  float64(wi.sampleRate),
		ratio: float64(wi.sampleRate) / rate,
	}, nil
}

// Duration is the length of one pass over the recording, in seconds.
func (w *WAVSource) Duration() float64 { return float64(len(w.pcm)) / w.rate }

// Next returns the sample under the playhead scaled around the bias code.
func (w *WAVSource) Next() uint16 {
	w.mu.Lock()
	s := w.pcm[int(w.pos)]
	w.pos += w.ratio
	for w.pos >= float64(len(w.pcm)) {
		w.pos -= float64(len(w.pcm))
	}
	w.mu.Unlock()
	return uint16(int32(micBiasCode) + int32(s)/16)
}

type wavInfo struct {
	channels   uint16
	sampleRate uint32
	bits       uint16
	dataOff    int64
	dataSize   uint32
}

func parseWAV(r io.ReadSeeker) (*wavInfo, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: bad header")
	}

	var (
		foundFmt  bool
		foundData bool
		wi        wavInfo
	)
	for {
		var ch [8]byte
		_, err := io.ReadFull(r, ch[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id := string(ch[0:4])
		sz := binary.LittleEndian.Uint32(ch[4:8])

		switch id {
		case "fmt ":
			if sz < 16 {
				return nil, fmt.Errorf("wav: short fmt chunk")
			}
			buf := make([]byte, sz)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			if format := binary.LittleEndian.Uint16(buf[0:2]); format != 1 {
				return nil, fmt.Errorf("wav: only PCM is supported (format=%d)", format)
			}
			wi.channels = binary.LittleEndian.Uint16(buf[2:4])
			wi.sampleRate = binary.LittleEndian.Uint32(buf[4:8])
			wi.bits = binary.LittleEndian.Uint16(buf[14:16])
			foundFmt = true

		case "data":
			off, _ := r.Seek(0, io.SeekCurrent)
			wi.dataOff = off
			wi.dataSize = sz
			if _, err := r.Seek(int64(sz), io.SeekCurrent); err != nil {
				return nil, err
			}
			foundData = true

		default:
			if _, err := r.Seek(int64(sz), io.SeekCurrent); err != nil {
				return nil, err
			}
		}

		if sz%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}

	if !foundFmt || !foundData {
		return nil, fmt.Errorf("wav: missing fmt or data chunk")
	}
	return &wi, nil
}
