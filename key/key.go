// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package key implements the key half of spec.md C2: the asymmetric-key
// schemes this module's wire types are parameterized by — Ed25519,
// Ed25519Extended and Ed25519Bip32. It consumes
// golang.org/x/crypto/ed25519 for the actual signing math; it does not
// reimplement the primitive.
package key

import (
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/ed25519"
)

// InvalidSizeError mirrors hash.InvalidSizeError for key material: raw
// key/signature bytes of the wrong width for their scheme.
type InvalidSizeError struct {
	What     string
	Expected int
	Actual   int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("key: invalid %s size: expected %d, got %d", e.What, e.Expected, e.Actual)
}

// ErrInvalidSignature is the error value for a signature that fails the
// scheme's structural/on-curve check. SignatureFromSlice checks only the
// width and does not return it.
var ErrInvalidSignature = fmt.Errorf("key: invalid signature")

// Scheme identifies one of the three asymmetric-key schemes this module
// supports. Each pins the raw (unprefixed) wire width of its public key
// and signature, per spec.md's "width is implied by scheme" rule.
type Scheme uint8

const (
	// Ed25519 is the plain scheme: 32-byte public key, 64-byte signature.
	Ed25519 Scheme = iota
	// Ed25519Extended carries an expanded 64-byte secret scalar but the
	// same 32-byte public key and 64-byte signature on the wire.
	Ed25519Extended
	// Ed25519Bip32 additionally carries a 32-byte chain code appended to
	// the public key ("xpub"), used only by the legacy OldUtxo witness.
	Ed25519Bip32
)

// PublicWidth returns the raw wire width of a public key under this scheme.
func (s Scheme) PublicWidth() int {
	switch s {
	case Ed25519Bip32:
		return ed25519.PublicKeySize + 32
	default:
		return ed25519.PublicKeySize
	}
}

// SignatureWidth returns the raw wire width of a signature under this scheme.
func (s Scheme) SignatureWidth() int {
	return ed25519.SignatureSize
}

// PublicKey is the raw, scheme-width public key. Equality is byte
// equality; there is no length prefix on the wire — the scheme fixes
// the width.
type PublicKey struct {
	Scheme Scheme
	Bytes  []byte
}

// PublicKeyFromSlice validates the slice is exactly scheme.PublicWidth() bytes.
func PublicKeyFromSlice(scheme Scheme, b []byte) (PublicKey, error) {
	if len(b) != scheme.PublicWidth() {
		return PublicKey{}, &InvalidSizeError{What: "public key", Expected: scheme.PublicWidth(), Actual: len(b)}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return PublicKey{Scheme: scheme, Bytes: out}, nil
}

// ed25519Key extracts the 32-byte Ed25519 public key portion, stripping
// the Bip32 chain code suffix if present.
func (p PublicKey) ed25519Key() ed25519.PublicKey {
	return ed25519.PublicKey(p.Bytes[:ed25519.PublicKeySize])
}

// Signature is the raw, scheme-width signature.
type Signature struct {
	Scheme Scheme
	Bytes  []byte
}

// SignatureFromSlice validates the slice is exactly scheme.SignatureWidth() bytes.
func SignatureFromSlice(scheme Scheme, b []byte) (Signature, error) {
	if len(b) != scheme.SignatureWidth() {
		return Signature{}, &InvalidSizeError{What: "signature", Expected: scheme.SignatureWidth(), Actual: len(b)}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return Signature{Scheme: scheme, Bytes: out}, nil
}

// SecretKey is the raw secret scalar/seed for a scheme. For Ed25519 and
// Ed25519Bip32 it is the standard 64-byte ed25519.PrivateKey (seed ||
// public). For Ed25519Extended it is treated identically: this module
// does not implement BIP32-style scalar derivation (key management is
// out of scope, spec.md §1), it only needs sign/verify/derive-public.
type SecretKey struct {
	Scheme Scheme
	sk     ed25519.PrivateKey
	// chainCode is only populated for Ed25519Bip32, appended to the
	// derived public key to form the 64-byte xpub.
	chainCode [32]byte
}

// GenerateSecretKey derives a SecretKey deterministically from seed (must
// be ed25519.SeedSize bytes) for scheme.
func GenerateSecretKey(scheme Scheme, seed []byte) (SecretKey, error) {
	if len(seed) != ed25519.SeedSize {
		return SecretKey{}, &InvalidSizeError{What: "seed", Expected: ed25519.SeedSize, Actual: len(seed)}
	}
	sk := ed25519.NewKeyFromSeed(seed)
	var cc [32]byte
	if scheme == Ed25519Bip32 {
		copy(cc[:], sha512.Sum512(seed)[32:])
	}
	return SecretKey{Scheme: scheme, sk: sk, chainCode: cc}, nil
}

// DerivePublic returns the public key corresponding to k.
func (k SecretKey) DerivePublic() PublicKey {
	pub := k.sk.Public().(ed25519.PublicKey)
	raw := make([]byte, 0, k.Scheme.PublicWidth())
	raw = append(raw, pub...)
	if k.Scheme == Ed25519Bip32 {
		raw = append(raw, k.chainCode[:]...)
	}
	return PublicKey{Scheme: k.Scheme, Bytes: raw}
}

// Sign produces a scheme-width signature over msg.
func (k SecretKey) Sign(msg []byte) Signature {
	sig := ed25519.Sign(k.sk, msg)
	return Signature{Scheme: k.Scheme, Bytes: sig}
}

// Verification is the outcome of a signature check: a value, not an
// error (spec.md §7 "Verification outcomes ... are not errors").
type Verification uint8

const (
	Success Verification = iota
	Failed
)

func (v Verification) String() string {
	if v == Success {
		return "Success"
	}
	return "Failed"
}

// Verify checks sig over msg under pub. Scheme mismatch is reported as
// Failed, not an error.
func Verify(pub PublicKey, msg []byte, sig Signature) Verification {
	if pub.Scheme != sig.Scheme {
		return Failed
	}
	if ed25519.Verify(pub.ed25519Key(), msg, sig.Bytes) {
		return Success
	}
	return Failed
}

// KeyPair is (SecretKey, PublicKey) where the public key is derivable
// from the secret.
type KeyPair struct {
	Secret SecretKey
	Public PublicKey
}

// NewKeyPair derives the public half from secret.
func NewKeyPair(secret SecretKey) KeyPair {
	return KeyPair{Secret: secret, Public: secret.DerivePublic()}
}
