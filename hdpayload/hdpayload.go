// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package hdpayload implements the hierarchical-deterministic address
// payload codec (spec.md C8): a PBKDF2-derived symmetric key encrypts a
// CBOR-encoded derivation path with ChaCha20-Poly1305 under a fixed
// nonce. It is grounded on original_source/wallet-crypto/src/hdpayload.rs
// and must remain bit-compatible with it — the wire constants below are
// deliberate, not defaults to tune.
package hdpayload

import (
	"crypto/sha512"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"github.com/dblokhin/ledgercore/cbor"
	"github.com/dblokhin/ledgercore/packer"
)

const (
	// HDKeySize is the width of the derived symmetric key.
	HDKeySize = 32

	// tagLen is the ChaCha20-Poly1305 authentication tag width.
	tagLen = 16

	// pbkdf2Iterations and salt (below) are wire constants fixed by the
	// deployed chain; changing them breaks every address in the wild.
	pbkdf2Iterations = 500
)

// nonce is the fixed 12-byte ChaCha20-Poly1305 nonce. Reuse across
// payloads is safe only because every payload's key is itself unique
// (derived from a distinct root public key) — see spec.md §4.8.
var nonce = []byte("serokellfore")

var salt = []byte("address-hashing")

// HDKey is the 32-byte symmetric key used to encrypt/decrypt a single
// account's address payloads.
type HDKey [HDKeySize]byte

// NewHDKey derives the key for rootPublicKey, a scheme-width public key
// (key.PublicKey.Bytes): PBKDF2-HMAC-SHA512(password=rootPublicKey,
// salt="address-hashing", iterations=500, out_len=32).
func NewHDKey(rootPublicKey []byte) HDKey {
	derived := pbkdf2.Key(rootPublicKey, salt, pbkdf2Iterations, HDKeySize, sha512.New)
	var key HDKey
	copy(key[:], derived)
	return key
}

// HDKeyFromBytes takes ownership of an already-derived 32-byte key.
func HDKeyFromBytes(b [HDKeySize]byte) HDKey {
	return HDKey(b)
}

// HDKeyFromSlice validates the slice is exactly HDKeySize bytes.
func HDKeyFromSlice(b []byte) (HDKey, bool) {
	var k HDKey
	if len(b) != HDKeySize {
		return k, false
	}
	copy(k[:], b)
	return k, true
}

// Encrypt seals input under k with the fixed nonce and empty AAD,
// returning ciphertext || 16-byte tag.
func (k HDKey) Encrypt(input []byte) []byte {
	aead, err := chacha20poly1305.New(k[:])
	if err != nil {
		// New only fails on a wrong-size key, which HDKeySize guarantees against.
		panic(err)
	}
	return aead.Seal(nil, nonce, input, nil)
}

// Decrypt opens input under k. It never returns a fatal error: a short
// input or an authentication failure both yield (nil, false).
func (k HDKey) Decrypt(input []byte) ([]byte, bool) {
	if len(input) < tagLen {
		return nil, false
	}
	aead, err := chacha20poly1305.New(k[:])
	if err != nil {
		panic(err)
	}
	out, err := aead.Open(nil, nonce, input, nil)
	if err != nil {
		return nil, false
	}
	return out, true
}

// EncryptPath CBOR-encodes path and encrypts it, producing an
// HDAddressPayload.
func (k HDKey) EncryptPath(path Path) HDAddressPayload {
	return HDAddressPayload(k.Encrypt(path.CBOR()))
}

// DecryptPath decrypts and CBOR-decodes payload. Never fatal: failure
// (wrong key, corrupted payload, malformed CBOR) yields (Path{}, false).
func (k HDKey) DecryptPath(payload HDAddressPayload) (Path, bool) {
	plain, ok := k.Decrypt(payload)
	if !ok {
		return Path{}, false
	}
	path, err := PathFromCBOR(plain)
	if err != nil {
		return Path{}, false
	}
	return path, true
}

// Path is an ordered list of 32-bit HD derivation indices.
type Path struct {
	indices []uint32
}

// NewPath wraps v as a Path.
func NewPath(v []uint32) Path {
	return Path{indices: v}
}

// Indices returns the path's derivation indices.
func (p Path) Indices() []uint32 {
	return p.indices
}

// CBOR encodes the path as an indefinite-length CBOR array of unsigned
// integers (spec.md S2: Path([0,1]) == 9f 00 01 ff).
func (p Path) CBOR() []byte {
	return cbor.EncodeIndefiniteUintArray(nil, p.indices)
}

// PathFromCBOR decodes a Path previously produced by Path.CBOR.
func PathFromCBOR(b []byte) (Path, error) {
	buf := packer.NewReadBuf(b)
	indices, err := cbor.DecodeIndefiniteUintArray(buf)
	if err != nil {
		return Path{}, err
	}
	return Path{indices: indices}, nil
}

// Equal reports whether p and o carry the same indices in the same order.
func (p Path) Equal(o Path) bool {
	if len(p.indices) != len(o.indices) {
		return false
	}
	for i := range p.indices {
		if p.indices[i] != o.indices[i] {
			return false
		}
	}
	return true
}

// HDAddressPayload is the opaque encrypted-and-authenticated byte string
// carried inside an HD address.
type HDAddressPayload []byte

// CBOR wraps the payload as "CBOR-in-CBOR": a byte string whose content
// is itself the CBOR-encoded payload bytes. Used when an HDAddressPayload
// is embedded inside a larger self-describing structure.
func (p HDAddressPayload) CBOR() []byte {
	return cbor.EncodeBytesOfCBOR(nil, p)
}

// HDAddressPayloadFromCBOR reads back a CBOR-in-CBOR-wrapped payload.
func HDAddressPayloadFromCBOR(b []byte) (HDAddressPayload, error) {
	buf := packer.NewReadBuf(b)
	inner, err := cbor.DecodeBytesOfCBOR(buf)
	if err != nil {
		return nil, err
	}
	return HDAddressPayload(inner), nil
}
