// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package hash implements the hash half of spec.md C2: the three
// fixed-width content hashes this module's wire types are addressed
// by — Blake2b-224, Blake2b-256 and SHA3-256.
package hash

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// InvalidSizeError is returned by a hash's FromSlice constructor when the input
// isn't exactly the hash's declared width.
type InvalidSizeError struct {
	Expected int
	Actual   int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("hash: invalid size: expected %d, got %d", e.Expected, e.Actual)
}

// Blake2b224Size is the digest width of Blake2b224.
const Blake2b224Size = 28

// Blake2b224 is a 28-byte Blake2b digest, used for identities that don't
// need the full 256-bit width (e.g. BFT leader ids).
type Blake2b224 [Blake2b224Size]byte

// HashBlake2b224 hashes data into a Blake2b224.
func HashBlake2b224(data []byte) Blake2b224 {
	h, err := blake2b.New(Blake2b224Size, nil)
	if err != nil {
		// blake2b.New only errors on an oversized key, which we never pass.
		panic(err)
	}
	h.Write(data)
	var out Blake2b224
	copy(out[:], h.Sum(nil))
	return out
}

// Blake2b224FromSlice accepts only an exact-sized input.
func Blake2b224FromSlice(b []byte) (Blake2b224, error) {
	var out Blake2b224
	if len(b) != Blake2b224Size {
		return out, &InvalidSizeError{Expected: Blake2b224Size, Actual: len(b)}
	}
	copy(out[:], b)
	return out, nil
}

func (h Blake2b224) Bytes() []byte { return h[:] }

func (h Blake2b224) Equal(o Blake2b224) bool { return bytes.Equal(h[:], o[:]) }

// Less implements the data model's "ordering is lexicographic" rule.
func (h Blake2b224) Less(o Blake2b224) bool { return bytes.Compare(h[:], o[:]) < 0 }

// Blake2b256Size is the digest width of Blake2b256.
const Blake2b256Size = 32

// Blake2b256 is the 32-byte digest used for block content hashes, block
// ids and stake pool ids.
type Blake2b256 [Blake2b256Size]byte

// HashBlake2b256 hashes data into a Blake2b256.
func HashBlake2b256(data []byte) Blake2b256 {
	return Blake2b256(blake2b.Sum256(data))
}

// Blake2b256FromSlice accepts only an exact-sized input.
func Blake2b256FromSlice(b []byte) (Blake2b256, error) {
	var out Blake2b256
	if len(b) != Blake2b256Size {
		return out, &InvalidSizeError{Expected: Blake2b256Size, Actual: len(b)}
	}
	copy(out[:], b)
	return out, nil
}

func (h Blake2b256) Bytes() []byte { return h[:] }

func (h Blake2b256) Equal(o Blake2b256) bool { return bytes.Equal(h[:], o[:]) }

func (h Blake2b256) Less(o Blake2b256) bool { return bytes.Compare(h[:], o[:]) < 0 }

// Sha3_256Size is the digest width of Sha3_256.
const Sha3_256Size = 32

// Sha3_256 is a 32-byte SHA3-256 digest.
type Sha3_256 [Sha3_256Size]byte

// HashSha3_256 hashes data into a Sha3_256.
func HashSha3_256(data []byte) Sha3_256 {
	return Sha3_256(sha3.Sum256(data))
}

// Sha3_256FromSlice accepts only an exact-sized input.
func Sha3_256FromSlice(b []byte) (Sha3_256, error) {
	var out Sha3_256
	if len(b) != Sha3_256Size {
		return out, &InvalidSizeError{Expected: Sha3_256Size, Actual: len(b)}
	}
	copy(out[:], b)
	return out, nil
}

func (h Sha3_256) Bytes() []byte { return h[:] }

func (h Sha3_256) Equal(o Sha3_256) bool { return bytes.Equal(h[:], o[:]) }

func (h Sha3_256) Less(o Sha3_256) bool { return bytes.Compare(h[:], o[:]) < 0 }
