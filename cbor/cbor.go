// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package cbor implements the self-describing tag codec (spec.md C3):
// a hand-rolled, length-minimal subset of CBOR (RFC 7049) covering
// unsigned integers, definite-length byte strings,
// indefinite-length arrays and "byte-string-of-cbor" nesting. It is the
// only subset the HD address payload (hdpayload) needs, and it is
// written in the same byte-primitive style as packer rather than
// pulled from a general-purpose CBOR library: general CBOR encoders
// default to definite-length, canonical output and don't reproduce the
// bit-exact indefinite-array encoding this wire format commits to (see
// the unit vectors in hdpayload's tests).
package cbor

import (
	"github.com/dblokhin/ledgercore/packer"
)

const (
	majorUnsigned = 0 << 5
	majorBytes    = 2 << 5
	majorArray    = 4 << 5

	indefiniteBreak = 0xFF
)

// EncodeUint appends the length-minimal major-0 encoding of v to dst.
func EncodeUint(dst []byte, v uint64) []byte {
	switch {
	case v < 24:
		return append(dst, majorUnsigned|byte(v))
	case v <= 0xFF:
		return append(dst, majorUnsigned|24, byte(v))
	case v <= 0xFFFF:
		return append(dst, majorUnsigned|25, byte(v>>8), byte(v))
	case v <= 0xFFFFFFFF:
		return append(dst, majorUnsigned|26, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(dst, majorUnsigned|27,
			byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
			byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}

// EncodeBytes appends a definite-length major-2 byte string.
func EncodeBytes(dst []byte, b []byte) []byte {
	dst = encodeHead(dst, majorBytes, uint64(len(b)))
	return append(dst, b...)
}

func encodeHead(dst []byte, major byte, n uint64) []byte {
	switch {
	case n < 24:
		return append(dst, major|byte(n))
	case n <= 0xFF:
		return append(dst, major|24, byte(n))
	case n <= 0xFFFF:
		return append(dst, major|25, byte(n>>8), byte(n))
	case n <= 0xFFFFFFFF:
		return append(dst, major|26, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(dst, major|27,
			byte(n>>56), byte(n>>48), byte(n>>40), byte(n>>32),
			byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}

// EncodeIndefiniteUintArray appends an indefinite-length major-4 array
// of unsigned integers, terminated by the 0xFF break byte. This is the
// encoding used for the HD derivation Path.
func EncodeIndefiniteUintArray(dst []byte, items []uint32) []byte {
	dst = append(dst, majorArray|31)
	for _, v := range items {
		dst = EncodeUint(dst, uint64(v))
	}
	return append(dst, indefiniteBreak)
}

// EncodeBytesOfCBOR wraps an already-encoded CBOR item (innerCBOR) in a
// byte string, the "CBOR-in-CBOR" construction used to encapsulate the
// path array inside a larger self-describing structure.
func EncodeBytesOfCBOR(dst []byte, innerCBOR []byte) []byte {
	return EncodeBytes(dst, innerCBOR)
}

// DecodeUint reads a major-0 unsigned integer.
func DecodeUint(buf *packer.ReadBuf) (uint64, error) {
	head, err := buf.GetU8()
	if err != nil {
		return 0, err
	}
	if head>>5 != 0 {
		return 0, &packer.StructureInvalidError{Msg: "expected unsigned integer major type"}
	}
	return decodeArg(buf, head&0x1F)
}

func decodeArg(buf *packer.ReadBuf, arg byte) (uint64, error) {
	switch {
	case arg < 24:
		return uint64(arg), nil
	case arg == 24:
		v, err := buf.GetU8()
		return uint64(v), err
	case arg == 25:
		v, err := buf.GetU16()
		return uint64(v), err
	case arg == 26:
		v, err := buf.GetU32()
		return uint64(v), err
	case arg == 27:
		return buf.GetU64()
	default:
		return 0, &packer.StructureInvalidError{Msg: "unsupported additional info"}
	}
}

// DecodeBytes reads a definite-length major-2 byte string.
func DecodeBytes(buf *packer.ReadBuf) ([]byte, error) {
	head, err := buf.GetU8()
	if err != nil {
		return nil, err
	}
	if head>>5 != 2 {
		return nil, &packer.StructureInvalidError{Msg: "expected byte string major type"}
	}
	n, err := decodeArg(buf, head&0x1F)
	if err != nil {
		return nil, err
	}
	return buf.GetSlice(int(n))
}

// DecodeIndefiniteUintArray reads an indefinite-length major-4 array of
// unsigned integers up to the 0xFF break.
func DecodeIndefiniteUintArray(buf *packer.ReadBuf) ([]uint32, error) {
	head, err := buf.GetU8()
	if err != nil {
		return nil, err
	}
	if head != majorArray|31 {
		return nil, &packer.StructureInvalidError{Msg: "expected indefinite-length array"}
	}

	var out []uint32
	for {
		peek, err := buf.GetU8()
		if err != nil {
			return nil, err
		}
		if peek == indefiniteBreak {
			return out, nil
		}
		if peek>>5 != 0 {
			return nil, &packer.StructureInvalidError{Msg: "array element is not an unsigned integer"}
		}
		v, err := decodeArg(buf, peek&0x1F)
		if err != nil {
			return nil, err
		}
		if v > 0xFFFFFFFF {
			return nil, &packer.StructureInvalidError{Msg: "array element overflows uint32"}
		}
		out = append(out, uint32(v))
	}
}

// DecodeBytesOfCBOR reads the outer byte string and returns its raw
// contents for the caller to decode as a nested CBOR item.
func DecodeBytesOfCBOR(buf *packer.ReadBuf) ([]byte, error) {
	return DecodeBytes(buf)
}
