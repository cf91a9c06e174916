// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package packer implements the big-endian fixed-width integer I/O and
// length-checked buffered reader (spec.md C1) every wire codec in this
// module is built on top of.
package packer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// NotEnoughError is returned by a ReadBuf primitive when the buffer has
// fewer bytes remaining than the operation requires.
type NotEnoughError struct {
	Requested int
	Remaining int
}

func (e *NotEnoughError) Error() string {
	return fmt.Sprintf("packer: not enough bytes: requested %d, remaining %d", e.Requested, e.Remaining)
}

// StructureInvalidError reports a decode that read structurally
// malformed data (wrong CBOR major type, overrun framing, and so on).
type StructureInvalidError struct {
	Msg string
}

func (e *StructureInvalidError) Error() string {
	return "packer: structure invalid: " + e.Msg
}

// UnknownTagError is returned when a closed tag registry (UpdateProposal
// tags, Witness tags) is fed a tag it does not recognize. The protocol
// is closed: implementations MUST NOT silently skip unknown tags.
type UnknownTagError struct {
	Tag uint32
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("packer: unknown tag: %d", e.Tag)
}

// SizeTooBigError is returned when an encoded size would overflow its
// declared wire width (e.g. block content size overflowing uint32).
type SizeTooBigError struct {
	Size uint64
}

func (e *SizeTooBigError) Error() string {
	return fmt.Sprintf("packer: size too big: %d", e.Size)
}

// ReadBuf wraps a borrowed byte slice and a read cursor. It never copies
// the underlying slice and never reads past the caller-supplied bounds.
type ReadBuf struct {
	data   []byte
	cursor int
}

// NewReadBuf creates a ReadBuf over data. The slice is borrowed, not
// copied: callers must not mutate it while the ReadBuf is in use.
func NewReadBuf(data []byte) *ReadBuf {
	return &ReadBuf{data: data}
}

func (b *ReadBuf) need(n int) error {
	if b.cursor+n > len(b.data) {
		return &NotEnoughError{Requested: n, Remaining: len(b.data) - b.cursor}
	}
	return nil
}

// GetU8 reads one byte.
func (b *ReadBuf) GetU8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.data[b.cursor]
	b.cursor++
	return v, nil
}

// GetU16 reads a big-endian uint16.
func (b *ReadBuf) GetU16() (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(b.data[b.cursor:])
	b.cursor += 2
	return v, nil
}

// GetU32 reads a big-endian uint32.
func (b *ReadBuf) GetU32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b.data[b.cursor:])
	b.cursor += 4
	return v, nil
}

// GetU64 reads a big-endian uint64.
func (b *ReadBuf) GetU64() (uint64, error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(b.data[b.cursor:])
	b.cursor += 8
	return v, nil
}

// GetU128 reads a big-endian uint128, returned as (high, low) uint64s.
func (b *ReadBuf) GetU128() (hi uint64, lo uint64, err error) {
	if err := b.need(16); err != nil {
		return 0, 0, err
	}
	hi = binary.BigEndian.Uint64(b.data[b.cursor:])
	lo = binary.BigEndian.Uint64(b.data[b.cursor+8:])
	b.cursor += 16
	return hi, lo, nil
}

// GetSlice returns a borrowed n-byte window and advances the cursor.
func (b *ReadBuf) GetSlice(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	s := b.data[b.cursor : b.cursor+n]
	b.cursor += n
	return s, nil
}

// IsEnd reports whether the cursor sits at the end of the buffer.
func (b *ReadBuf) IsEnd() bool {
	return b.cursor >= len(b.data)
}

// Remaining returns the number of unread bytes.
func (b *ReadBuf) Remaining() int {
	return len(b.data) - b.cursor
}

// Codec is the writer-side counterpart of ReadBuf: a thin wrapper over an
// io.Writer offering the symmetric put_uN operations. It adds no
// buffering semantics of its own beyond the underlying sink.
type Codec struct {
	w io.Writer
}

// NewCodec wraps w.
func NewCodec(w io.Writer) *Codec {
	return &Codec{w: w}
}

// Into returns the underlying writer.
func (c *Codec) Into() io.Writer {
	return c.w
}

func (c *Codec) PutU8(v uint8) error {
	_, err := c.w.Write([]byte{v})
	return err
}

func (c *Codec) PutU16(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := c.w.Write(buf[:])
	return err
}

func (c *Codec) PutU32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := c.w.Write(buf[:])
	return err
}

func (c *Codec) PutU64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := c.w.Write(buf[:])
	return err
}

// PutU128 writes a 128-bit big-endian integer given as (high, low) uint64s.
func (c *Codec) PutU128(hi, lo uint64) error {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], hi)
	binary.BigEndian.PutUint64(buf[8:], lo)
	_, err := c.w.Write(buf[:])
	return err
}

func (c *Codec) PutBytes(b []byte) error {
	_, err := c.w.Write(b)
	return err
}
