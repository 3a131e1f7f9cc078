// Package audioconv decodes audio files into mono float32 PCM at a fixed
// sample rate and encodes PCM back into WAV for upload.
package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const DefaultRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

type Options struct {
	Rate       int // output sample rate, 0 => DefaultRate
	MaxSamples int // 0 = no limit
}

func (o Options) rate() int {
	if o.Rate <= 0 {
		return DefaultRate
	}
	return o.Rate
}

// finish downmixes, resamples and truncates decoded samples.
func (o Options) finish(x []float32, channels, rate int) []float32 {
	x = downmix(x, channels)
	x = resample(x, rate, o.rate())
	if o.MaxSamples > 0 && len(x) > o.MaxSamples {
		x = x[:o.MaxSamples]
	}
	return x
}

// DecodeFile picks a decoder by extension, falling back to sniffing the header.
func DecodeFile(path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, strings.ToLower(filepath.Ext(path)), opt)
}

func Decode(r io.ReadSeeker, ext string, opt Options) ([]float32, error) {
	switch ext {
	case ".wav":
		return decodeWAV(r, opt)
	case ".mp3":
		return decodeMP3(r, opt)
	case ".ogg", ".oga", ".opus":
		return decodeOgg(r, opt)
	}

	magic, _ := bufio.NewReader(r).Peek(4)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch {
	case string(magic) == "RIFF":
		return decodeWAV(r, opt)
	case string(magic) == "OggS":
		return decodeOgg(r, opt)
	case len(magic) >= 3 && (string(magic[:3]) == "ID3" || magic[0] == 0xFF && magic[1]&0xE0 == 0xE0):
		return decodeMP3(r, opt)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
}

func decodeWAV(r io.ReadSeeker, opt Options) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}

	channels, rate := 1, 44100
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	return opt.finish(intsToFloat(buf.Data, depth), channels, rate), nil
}

func decodeMP3(r io.Reader, opt Options) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, fmt.Errorf("read mp3: %w", err)
	}
	samples := make([]int16, raw.Len()/2)
	if err := binary.Read(&raw, binary.LittleEndian, samples); err != nil {
		return nil, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always yields interleaved stereo
	return opt.finish(int16ToFloat(samples), 2, rate), nil
}

// decodeOgg tries Vorbis first, then Opus.
func decodeOgg(r io.ReadSeeker, opt Options) ([]float32, error) {
	x, vErr := decodeVorbis(r, opt)
	if vErr == nil {
		return x, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	x, oErr := decodeOpus(r, opt)
	if oErr == nil {
		return x, nil
	}
	return nil, fmt.Errorf("ogg: vorbis: %v; opus: %w", vErr, oErr)
}

func decodeVorbis(r io.Reader, opt Options) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid vorbis stream")
	}
	return opt.finish(pcm, format.Channels, format.SampleRate), nil
}

func decodeOpus(r io.ReadSeeker, opt Options) ([]float32, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	// libopusfile always decodes at 48 kHz
	const opusRate = 48000
	var (
		pcm []float32
		buf = make([]int16, opusRate/2*channels)
	)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, int16ToFloat(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(pcm) == 0 {
		return nil, errors.New("empty opus stream")
	}
	return opt.finish(pcm, channels, opusRate), nil
}
