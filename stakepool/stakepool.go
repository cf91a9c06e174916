// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package stakepool implements the content-addressed stake pool and
// stake key identities: a StakePoolId is not chosen by its
// owners, it is computed from the pool's declared contents, so two
// pools with identical contents are the same pool and any change of
// contents is a different pool. Grounded on
// original_source/chain-impl-mockchain/src/stake/role.rs.
package stakepool

import (
	"bytes"
	"encoding/binary"

	"github.com/dblokhin/ledgercore/hash"
	"github.com/dblokhin/ledgercore/key"
)

// StakeKeyId identifies a stake key. Per role.rs's
// `StakeKeyId(pub(crate) PublicKey<Ed25519Extended>)`, this is the raw
// Ed25519Extended public key itself, not a digest of it — it serializes
// and feeds StakePoolInfo.ToID as the actual key bytes.
type StakeKeyId key.PublicKey

// NewStakeKeyId wraps pub as a StakeKeyId.
func NewStakeKeyId(pub key.PublicKey) StakeKeyId {
	return StakeKeyId(pub)
}

// Bytes returns the raw scheme-width public key bytes.
func (id StakeKeyId) Bytes() []byte { return key.PublicKey(id).Bytes }

// Equal reports whether id and o are the same stake key id.
func (id StakeKeyId) Equal(o StakeKeyId) bool {
	return bytes.Equal(id.Bytes(), o.Bytes())
}

// StakePoolId is the content-addressed identity of a stake pool: the
// Blake2b256 hash of its StakePoolInfo's canonical byte encoding
// (StakePoolInfo.ToID). It is never assigned, only computed.
type StakePoolId hash.Blake2b256

// Bytes returns the raw 32-byte id.
func (id StakePoolId) Bytes() []byte { return hash.Blake2b256(id).Bytes() }

// Equal reports whether id and o are the same stake pool id.
func (id StakePoolId) Equal(o StakePoolId) bool {
	return hash.Blake2b256(id).Equal(hash.Blake2b256(o))
}

// GenesisPraosLeader is the pair of keys a stake pool registers to
// participate in block leadership: a KES-style signing key (stood in
// here by a plain Ed25519 public key, since this core does not
// implement a key-evolving signature scheme — spec.md §1) and a VRF
// public key used to prove leadership eligibility.
type GenesisPraosLeader struct {
	KESPublicKey key.PublicKey
	VRFPublicKey key.PublicKey
}

// StakePoolInfo is a stake pool's full declared content: a serial
// number distinguishing pools that would otherwise collide, the set of
// owner stake keys (order-sensitive, see ToID), and its leadership keys.
type StakePoolInfo struct {
	SerialHi uint64
	SerialLo uint64
	Owners   []StakeKeyId
	Initial  GenesisPraosLeader
}

// ToID computes the pool's content-addressed id: Blake2b256 over
// serial (big-endian u128) || each owner's raw public-key bytes in
// slice order || KES public key bytes || VRF public key bytes.
// Reordering Owners produces a different id, since owner order is part
// of the preimage (spec.md S6).
func (p StakePoolInfo) ToID() StakePoolId {
	buf := new(bytes.Buffer)
	var serial [16]byte
	binary.BigEndian.PutUint64(serial[:8], p.SerialHi)
	binary.BigEndian.PutUint64(serial[8:], p.SerialLo)
	buf.Write(serial[:])
	for _, owner := range p.Owners {
		buf.Write(owner.Bytes())
	}
	buf.Write(p.Initial.KESPublicKey.Bytes)
	buf.Write(p.Initial.VRFPublicKey.Bytes)
	return StakePoolId(hash.HashBlake2b256(buf.Bytes()))
}
