// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/simsensor/lib/codec"
)

// Frame layout, all integers big-endian:
//
//	magic        [4]byte  "SSF1"
//	compression  uint8
//	rawLength    uint32   length of the CBOR envelope
//	payloadLen   uint32   length of the stored payload
//	checksum     [32]byte keyed BLAKE3 of the CBOR envelope
//	payload      [payloadLen]byte
const frameHeaderSize = 4 + 1 + 4 + 4 + 32

// maxFrameSize rejects corrupt length fields before allocating.
const maxFrameSize = 16 << 20

var frameMagic = [4]byte{'S', 'S', 'F', '1'}

// frameDomainKey separates frame checksums from any other BLAKE3 use
// of the same bytes. ASCII "simsensor.frame", zero padded.
var frameDomainKey = [32]byte{
	's', 'i', 'm', 's', 'e', 'n', 's', 'o', 'r', '.', 'f', 'r', 'a', 'm', 'e',
}

// ErrChecksum is returned by FrameReader.Next for a frame whose
// content does not match its checksum.
var ErrChecksum = errors.New("channel: frame checksum mismatch")

func frameChecksum(data []byte) [32]byte {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(frameDomainKey[:])
	if err != nil {
		panic("channel: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// FrameSink writes each envelope as one frame. Writes are serialized.
type FrameSink struct {
	mu          sync.Mutex
	writer      io.Writer
	closer      io.Closer
	compression Compression
	closed      bool

	frames uint64
	bytes  uint64
}

// NewFrameSink writes frames to w. If w is an io.Closer, Close closes
// it.
func NewFrameSink(w io.Writer, compression Compression) *FrameSink {
	sink := &FrameSink{writer: w, compression: compression}
	if closer, ok := w.(io.Closer); ok {
		sink.closer = closer
	}
	return sink
}

// CreateFrameFile creates (or truncates) path and returns a sink
// writing to it.
func CreateFrameFile(path string, compression Compression) (*FrameSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("channel: creating frame file: %w", err)
	}
	return NewFrameSink(file, compression), nil
}

// Write implements Sink.
func (f *FrameSink) Write(_ context.Context, envelope *Envelope) error {
	raw, err := codec.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	compression := f.compression
	payload, err := compress(raw, compression)
	if errors.Is(err, errIncompressible) {
		compression, payload = CompressionNone, raw
	} else if err != nil {
		return err
	}

	frame := make([]byte, frameHeaderSize, frameHeaderSize+len(payload))
	copy(frame[0:4], frameMagic[:])
	frame[4] = byte(compression)
	binary.BigEndian.PutUint32(frame[5:9], uint32(len(raw)))
	binary.BigEndian.PutUint32(frame[9:13], uint32(len(payload)))
	checksum := frameChecksum(raw)
	copy(frame[13:45], checksum[:])
	frame = append(frame, payload...)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if _, err := f.writer.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	f.frames++
	f.bytes += uint64(len(frame))
	return nil
}

// Close implements Sink.
func (f *FrameSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Frames returns the number of frames written.
func (f *FrameSink) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Bytes returns the number of bytes written.
func (f *FrameSink) Bytes() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytes
}

// FrameReader reads frames written by FrameSink.
type FrameReader struct {
	reader io.Reader
	header [frameHeaderSize]byte
}

// NewFrameReader reads frames from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{reader: r}
}

// Next returns the next envelope and its raw CBOR encoding. It returns
// io.EOF at a clean end of stream and io.ErrUnexpectedEOF for a
// truncated frame.
func (r *FrameReader) Next() (*Envelope, []byte, error) {
	if _, err := io.ReadFull(r.reader, r.header[:]); err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(r.header[0:4], frameMagic[:]) {
		return nil, nil, fmt.Errorf("channel: bad frame magic %q", r.header[0:4])
	}
	compression := Compression(r.header[4])
	rawLength := binary.BigEndian.Uint32(r.header[5:9])
	payloadLength := binary.BigEndian.Uint32(r.header[9:13])
	if rawLength > maxFrameSize || payloadLength > maxFrameSize {
		return nil, nil, fmt.Errorf("channel: frame of %d bytes exceeds limit %d", max(rawLength, payloadLength), maxFrameSize)
	}

	payload := make([]byte, payloadLength)
	if _, err := io.ReadFull(r.reader, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, nil, err
	}
	raw, err := decompress(payload, compression, int(rawLength))
	if err != nil {
		return nil, nil, fmt.Errorf("channel: %w", err)
	}
	if frameChecksum(raw) != [32]byte(r.header[13:45]) {
		return nil, nil, ErrChecksum
	}

	var envelope Envelope
	if err := codec.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, fmt.Errorf("channel: decoding envelope: %w", err)
	}
	return &envelope, raw, nil
}
