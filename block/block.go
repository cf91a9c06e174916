// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package block implements the block header and content framing
// (spec.md C6/C7): a Header binds a ConsensusVersion-specific proof of
// leadership to a content hash and size, and BlockContents is the
// ordered list of messages that hash and size describe. Grounded on
// src/consensus/block.go's BlockHeader/Block Bytes/Read/Hash pattern
// and on original_source/chain-impl-mockchain/src/block/mod.rs's
// is_consistent/compute_hash_size.
package block

import (
	"bytes"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/dblokhin/ledgercore/hash"
	"github.com/dblokhin/ledgercore/message"
	"github.com/dblokhin/ledgercore/packer"
)

// BlockVersion is the wire version of the block/header framing itself,
// independent of ConsensusVersion.
type BlockVersion uint16

const BlockVersion1 BlockVersion = 1

// ConsensusVersion selects which Proof variant a header's proof field
// holds.
type ConsensusVersion uint16

const (
	ConsensusBFT          ConsensusVersion = 1
	ConsensusGenesisPraos ConsensusVersion = 2
)

const (
	leaderIDSize  = hash.Blake2b224Size
	bftSigSize    = 64
	vrfProofSize  = 80
	kesSigSize    = 64
)

// BlockDate is a block's position in the chain's epoch/slot schedule.
type BlockDate struct {
	Epoch  uint32
	SlotID uint32
}

// BFTProof is the ConsensusBFT proof of leadership: the id of the
// leader who signed, and their signature over the rest of the header.
type BFTProof struct {
	LeaderID  hash.Blake2b224
	Signature [bftSigSize]byte
}

// GenesisPraosProof is the ConsensusGenesisPraos proof of leadership.
// This core does not implement a real KES (key-evolving signature)
// scheme (spec.md §1, out of scope for a data-model/serialization
// core); KESSignature is carried at its correct wire width as an
// opaque value so headers round-trip bit-exactly without this module
// claiming to verify it.
type GenesisPraosProof struct {
	VRFProof    [vrfProofSize]byte
	KESSignature [kesSigSize]byte
}

// Proof is the tagged union of leadership proofs a Header carries,
// selected by the header's ConsensusVersion.
type Proof struct {
	Version ConsensusVersion
	BFT     BFTProof
	Genesis GenesisPraosProof
}

func (p Proof) write(buf *bytes.Buffer) {
	switch p.Version {
	case ConsensusBFT:
		buf.Write(p.BFT.LeaderID.Bytes())
		buf.Write(p.BFT.Signature[:])
	case ConsensusGenesisPraos:
		buf.Write(p.Genesis.VRFProof[:])
		buf.Write(p.Genesis.KESSignature[:])
	}
}

func readProof(buf *packer.ReadBuf, version ConsensusVersion) (Proof, error) {
	p := Proof{Version: version}
	switch version {
	case ConsensusBFT:
		raw, err := buf.GetSlice(leaderIDSize)
		if err != nil {
			return Proof{}, err
		}
		leaderID, err := hash.Blake2b224FromSlice(raw)
		if err != nil {
			return Proof{}, err
		}
		sig, err := buf.GetSlice(bftSigSize)
		if err != nil {
			return Proof{}, err
		}
		var sigArr [bftSigSize]byte
		copy(sigArr[:], sig)
		p.BFT = BFTProof{LeaderID: leaderID, Signature: sigArr}
	case ConsensusGenesisPraos:
		vrf, err := buf.GetSlice(vrfProofSize)
		if err != nil {
			return Proof{}, err
		}
		kes, err := buf.GetSlice(kesSigSize)
		if err != nil {
			return Proof{}, err
		}
		var vrfArr [vrfProofSize]byte
		var kesArr [kesSigSize]byte
		copy(vrfArr[:], vrf)
		copy(kesArr[:], kes)
		p.Genesis = GenesisPraosProof{VRFProof: vrfArr, KESSignature: kesArr}
	default:
		return Proof{}, &packer.UnknownTagError{Tag: uint32(version)}
	}
	return p, nil
}

// Header is a block's metadata, including the proof that binds it to a
// leader, and the content hash/size pair that must match the
// BlockContents it accompanies (see Block.IsConsistent).
type Header struct {
	Version          BlockVersion
	ConsensusVersion ConsensusVersion
	ChainLength      uint32
	Date             BlockDate
	ParentHash       hash.Blake2b256
	ContentHash      hash.Blake2b256
	ContentSize      uint32
	Proof            Proof
}

// Bytes serializes the header's full on-wire byte representation,
// including its proof. This is also what Hash hashes.
func (h Header) Bytes() []byte {
	buff := new(bytes.Buffer)
	if err := binary.Write(buff, binary.BigEndian, uint16(h.Version)); err != nil {
		logrus.Fatal(err)
	}
	if err := binary.Write(buff, binary.BigEndian, uint16(h.ConsensusVersion)); err != nil {
		logrus.Fatal(err)
	}
	if err := binary.Write(buff, binary.BigEndian, h.ChainLength); err != nil {
		logrus.Fatal(err)
	}
	if err := binary.Write(buff, binary.BigEndian, h.Date.Epoch); err != nil {
		logrus.Fatal(err)
	}
	if err := binary.Write(buff, binary.BigEndian, h.Date.SlotID); err != nil {
		logrus.Fatal(err)
	}
	buff.Write(h.ParentHash.Bytes())
	buff.Write(h.ContentHash.Bytes())
	if err := binary.Write(buff, binary.BigEndian, h.ContentSize); err != nil {
		logrus.Fatal(err)
	}
	if err := binary.Write(buff, binary.BigEndian, uint8(h.Proof.Version)); err != nil {
		logrus.Fatal(err)
	}
	h.Proof.write(buff)

	return buff.Bytes()
}

// ReadHeader decodes a length-prefixed header off buf.
func ReadHeader(buf *packer.ReadBuf) (Header, error) {
	size, err := buf.GetU16()
	if err != nil {
		return Header{}, err
	}
	if int(size) > buf.Remaining() {
		return Header{}, &packer.NotEnoughError{Requested: int(size), Remaining: buf.Remaining()}
	}
	raw, err := buf.GetSlice(int(size))
	if err != nil {
		return Header{}, err
	}

	inner := packer.NewReadBuf(raw)
	var h Header
	version, err := inner.GetU16()
	if err != nil {
		return Header{}, err
	}
	h.Version = BlockVersion(version)

	consensusVersion, err := inner.GetU16()
	if err != nil {
		return Header{}, err
	}
	h.ConsensusVersion = ConsensusVersion(consensusVersion)

	if h.ChainLength, err = inner.GetU32(); err != nil {
		return Header{}, err
	}
	if h.Date.Epoch, err = inner.GetU32(); err != nil {
		return Header{}, err
	}
	if h.Date.SlotID, err = inner.GetU32(); err != nil {
		return Header{}, err
	}

	parentRaw, err := inner.GetSlice(hash.Blake2b256Size)
	if err != nil {
		return Header{}, err
	}
	if h.ParentHash, err = hash.Blake2b256FromSlice(parentRaw); err != nil {
		return Header{}, err
	}

	contentHashRaw, err := inner.GetSlice(hash.Blake2b256Size)
	if err != nil {
		return Header{}, err
	}
	if h.ContentHash, err = hash.Blake2b256FromSlice(contentHashRaw); err != nil {
		return Header{}, err
	}

	if h.ContentSize, err = inner.GetU32(); err != nil {
		return Header{}, err
	}

	proofTag, err := inner.GetU8()
	if err != nil {
		return Header{}, err
	}
	if h.Proof, err = readProof(inner, ConsensusVersion(proofTag)); err != nil {
		return Header{}, err
	}

	if !inner.IsEnd() {
		return Header{}, &packer.StructureInvalidError{Msg: "trailing bytes after header proof"}
	}

	return h, nil
}

// WriteHeader frames h's serialized bytes behind a u16 length prefix.
func WriteHeader(codec *packer.Codec, h Header) error {
	raw := h.Bytes()
	if len(raw) > 0xFFFF {
		return &packer.SizeTooBigError{Size: uint64(len(raw))}
	}
	if err := codec.PutU16(uint16(len(raw))); err != nil {
		return err
	}
	return codec.PutBytes(raw)
}

// Hash is a header's content-addressed block id: the Blake2b256 digest
// of its full serialized bytes, proof included.
func (h Header) Hash() hash.Blake2b256 {
	return hash.HashBlake2b256(h.Bytes())
}

// BlockContents is the ordered list of messages a block carries. Order
// is significant: it is part of what ComputeHashSize hashes.
type BlockContents struct {
	Messages []message.MessageRaw
}

// Bytes serializes every message back-to-back, each behind its own u16
// length prefix, with no overall terminator — BlockContents is
// delimited purely by ContentSize in the accompanying Header.
func (c BlockContents) Bytes() []byte {
	buff := new(bytes.Buffer)
	codec := packer.NewCodec(buff)
	for _, m := range c.Messages {
		if err := message.WriteMessageRaw(codec, m.MsgTag, m.Payload); err != nil {
			logrus.Fatal(err)
		}
	}
	return buff.Bytes()
}

// ComputeHashSize returns the (contentHash, contentSize) pair a
// Header must carry for c: the Blake2b256 hash of c's concatenated
// serialized bytes, and their total length.
func ComputeHashSize(c BlockContents) (hash.Blake2b256, uint32) {
	raw := c.Bytes()
	if len(raw) > 0xFFFFFFFF {
		logrus.Fatal(&packer.SizeTooBigError{Size: uint64(len(raw))})
	}
	return hash.HashBlake2b256(raw), uint32(len(raw))
}

// DecodeBlockContents reads exactly contentSize bytes' worth of
// messages from buf. It rejects a message whose declared length would
// overrun the remaining content bytes — the decode-loop bounds check
// the original implementation omitted, letting a crafted message claim
// a size extending past the block's declared content (spec.md §9).
func DecodeBlockContents(buf *packer.ReadBuf, contentSize uint32) (BlockContents, error) {
	if uint32(buf.Remaining()) < contentSize {
		return BlockContents{}, &packer.NotEnoughError{Requested: int(contentSize), Remaining: buf.Remaining()}
	}

	remaining := int(contentSize)
	var contents BlockContents
	for remaining > 0 {
		before := buf.Remaining()
		m, err := message.ReadMessageRaw(buf)
		if err != nil {
			return BlockContents{}, err
		}
		consumed := before - buf.Remaining()
		if consumed > remaining {
			return BlockContents{}, &packer.StructureInvalidError{Msg: "message overruns declared block content size"}
		}
		remaining -= consumed
		contents.Messages = append(contents.Messages, m)
	}

	return contents, nil
}

// Block pairs a Header with the BlockContents it describes.
type Block struct {
	Header   Header
	Contents BlockContents
}

// IsConsistent reports whether b.Header's content hash and size match
// b.Contents's actual serialized hash and size. A block failing this
// check must be rejected before anything else is done with it.
func (b Block) IsConsistent() bool {
	wantHash, wantSize := ComputeHashSize(b.Contents)
	return b.Header.ContentHash.Equal(wantHash) && b.Header.ContentSize == wantSize
}

// Hash returns the block's id: its header's hash. Two blocks with
// identical headers are the same block regardless of how their
// contents happen to be encoded, matching the original's
// equality-by-header-hash semantics.
func (b Block) Hash() hash.Blake2b256 {
	return b.Header.Hash()
}

// Bytes serializes the full block: length-prefixed header followed by
// the raw content bytes (delimited by the header's ContentSize, not by
// a length prefix of their own).
func (b Block) Bytes() []byte {
	buff := new(bytes.Buffer)
	codec := packer.NewCodec(buff)
	if err := WriteHeader(codec, b.Header); err != nil {
		logrus.Fatal(err)
	}
	buff.Write(b.Contents.Bytes())
	return buff.Bytes()
}

// DecodeBlock reads a full block: a length-prefixed header, then
// exactly header.ContentSize bytes of content messages.
func DecodeBlock(buf *packer.ReadBuf) (Block, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return Block{}, err
	}
	contents, err := DecodeBlockContents(buf, h.ContentSize)
	if err != nil {
		return Block{}, err
	}
	return Block{Header: h, Contents: contents}, nil
}
