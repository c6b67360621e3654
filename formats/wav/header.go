// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"math"

	gowav "github.com/go-audio/wav"
)

const (
	pcmFormat      = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
)

// layout is the shape of the PCM payload as reported by the header.
type layout struct {
	sampleRate int
	channels   int
	frames     int
}

func (l layout) samples() int { return l.frames * l.channels }

// frameLayout derives the frame count from the payload length. A header that
// reports a negative length or frame size, or one whose frame and channel
// counts cannot be multiplied without overflowing, is corrupt.
func frameLayout(pcmLen int64, channels, sampleBytes int) (int, error) {
	if channels <= 0 || sampleBytes <= 0 {
		return 0, fmt.Errorf("frame size %d x %d bytes: %w", channels, sampleBytes, ErrCorruptStream)
	}
	if channels > math.MaxInt32/sampleBytes {
		return 0, fmt.Errorf("frame size overflows with %d channels: %w", channels, ErrCorruptStream)
	}
	if pcmLen < 0 {
		return 0, fmt.Errorf("negative data length %d: %w", pcmLen, ErrCorruptStream)
	}

	frames := pcmLen / int64(channels*sampleBytes)
	if frames > int64(math.MaxInt/channels) || frames > math.MaxInt32 {
		return 0, fmt.Errorf("%d frames of %d channels: %w", frames, channels, ErrCorruptStream)
	}
	return int(frames), nil
}

// seekable turns r into an io.ReadSeeker, buffering it in memory when it is
// not one already; go-audio needs to seek while walking chunks.
func seekable(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}
	return bytes.NewReader(data), nil
}

// checkMagic peeks at the RIFF/WAVE preamble and rewinds.
func checkMagic(rs io.ReadSeeker) error {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}

	var magic [12]byte
	n, err := io.ReadFull(rs, magic[:])
	if n == 0 {
		return ErrEmptyStream
	}
	if err != nil || !bytes.Equal(magic[:4], []byte("RIFF")) || !bytes.Equal(magic[8:], []byte("WAVE")) {
		return ErrNotWavFile
	}

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	return nil
}

// open validates the container and positions dec at the start of the PCM
// data.
func open(r io.Reader) (*gowav.Decoder, layout, error) {
	rs, err := seekable(r)
	if err != nil {
		return nil, layout{}, err
	}
	if err := checkMagic(rs); err != nil {
		return nil, layout{}, err
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, layout{}, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans == 0 {
		return nil, layout{}, ErrUnsupportedWavLayout
	}
	if dec.WavAudioFormat != pcmFormat || dec.BitDepth != bitsPerSample {
		return nil, layout{}, ErrOnlyPCM16bitSupported
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, layout{}, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	frames, err := frameLayout(dec.PCMLen(), int(dec.NumChans), bytesPerSample)
	if err != nil {
		return nil, layout{}, err
	}

	l := layout{
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		frames:     frames,
	}
	if err := checkPayload(rs, int64(l.samples())*bytesPerSample); err != nil {
		return nil, layout{}, err
	}
	return dec, l, nil
}

// checkPayload fails when fewer than need bytes remain after the current
// position of rs, so a header cannot claim more audio than the stream holds.
func checkPayload(rs io.ReadSeeker, need int64) error {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}

	if end-pos < need {
		return fmt.Errorf("data chunk claims %d bytes, %d present: %w", need, end-pos, ErrCorruptStream)
	}
	return nil
}
