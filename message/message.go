// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package message implements the block-content message envelope, the
// "ordered sequence of messages" half of spec.md C6: each message is a
// self-delimiting, u16-length-prefixed byte string whose first byte is
// a tag identifying its payload shape. Grounded on
// src/p2p/protocol.go's Message interface and src/p2p/messages.go's
// tag-dispatched Bytes/Read pattern.
package message

import (
	"bytes"

	"github.com/dblokhin/ledgercore/configparam"
	"github.com/dblokhin/ledgercore/packer"
)

// Tag identifies a message's payload shape. The registry is closed: an
// unrecognized tag is a fatal UnknownTagError, never silently skipped.
type Tag uint8

const (
	TagInitial Tag = 0
	TagOldUTXODecl Tag = 1
	TagUpdateProposal Tag = 2
	TagOpaque Tag = 255
)

// Message is anything that can appear inside a block's content list.
// Bytes returns the payload only (tag excluded) — the tag travels
// alongside via Tag(), matching how MessageRaw separates framing from
// payload.
type Message interface {
	Tag() Tag
	Bytes() []byte
}

// MessageRaw is an undecoded message: a tag byte plus an opaque payload,
// still wrapped in its own u16 length prefix (spec.md §4.3). It is the
// unit a BlockContents decode loop works with before any message is
// dispatched to its concrete type.
type MessageRaw struct {
	MsgTag  Tag
	Payload []byte
}

// Tag implements Message.
func (m MessageRaw) Tag() Tag { return m.MsgTag }

// Bytes implements Message, returning the payload only.
func (m MessageRaw) Bytes() []byte { return m.Payload }

// SizeBytesPlusSize returns the number of bytes this message occupies
// on the wire including its own u16 length prefix: the length prefix
// itself (2 bytes) plus one tag byte plus the payload. This is the
// quantity a BlockContents decode loop advances by, and the quantity
// that must not exceed the bytes remaining in the content buffer
// (spec.md §9's overrun fix).
func (m MessageRaw) SizeBytesPlusSize() int {
	return 2 + 1 + len(m.Payload)
}

// WriteMessageRaw frames tag||payload behind a u16 length prefix.
func WriteMessageRaw(codec *packer.Codec, msgTag Tag, payload []byte) error {
	size := 1 + len(payload)
	if size > 0xFFFF {
		return &packer.SizeTooBigError{Size: uint64(size)}
	}
	if err := codec.PutU16(uint16(size)); err != nil {
		return err
	}
	if err := codec.PutU8(uint8(msgTag)); err != nil {
		return err
	}
	return codec.PutBytes(payload)
}

// ReadMessageRaw reads one u16-length-prefixed, tag-dispatched message
// from buf. It returns packer.NotEnoughError if the declared length
// overruns the bytes remaining in buf — the decode-loop overrun check
// the original implementation omitted (spec.md §9). A tag byte outside
// the Tag registry yields packer.UnknownTagError.
func ReadMessageRaw(buf *packer.ReadBuf) (MessageRaw, error) {
	size, err := buf.GetU16()
	if err != nil {
		return MessageRaw{}, err
	}
	if int(size) > buf.Remaining() {
		return MessageRaw{}, &packer.NotEnoughError{Requested: int(size), Remaining: buf.Remaining()}
	}
	if size == 0 {
		return MessageRaw{}, &packer.StructureInvalidError{Msg: "message has no tag byte"}
	}
	tag, err := buf.GetU8()
	if err != nil {
		return MessageRaw{}, err
	}
	switch Tag(tag) {
	case TagInitial, TagOldUTXODecl, TagUpdateProposal, TagOpaque:
	default:
		return MessageRaw{}, &packer.UnknownTagError{Tag: uint32(tag)}
	}
	payload, err := buf.GetSlice(int(size) - 1)
	if err != nil {
		return MessageRaw{}, err
	}
	return MessageRaw{MsgTag: Tag(tag), Payload: payload}, nil
}

// InitialEnts is the bootstrap message carrying the chain's genesis
// configuration: an ordered list of configparam records consumed until
// the payload buffer is exhausted. Unlike settings.UpdateProposal there
// is no trailing End tag — the message's own length prefix delimits it
// (grounded on original_source/chain-impl-mockchain/src/message/initial.rs).
type InitialEnts struct {
	Records []configparam.Record
}

// Tag implements Message.
func (InitialEnts) Tag() Tag { return TagInitial }

// Bytes implements Message, serializing every record back-to-back with
// no terminator.
func (e InitialEnts) Bytes() []byte {
	buff := new(bytes.Buffer)
	codec := packer.NewCodec(buff)
	for _, rec := range e.Records {
		// WriteRecord cannot fail against an in-memory sink other than
		// on an unrecognized tag, which only a hand-built Record could carry.
		if err := configparam.WriteRecord(codec, rec); err != nil {
			panic(err)
		}
	}
	return buff.Bytes()
}

// DecodeInitialEnts reads configparam records from payload until it is
// exhausted.
func DecodeInitialEnts(payload []byte) (InitialEnts, error) {
	buf := packer.NewReadBuf(payload)
	var ents InitialEnts
	for !buf.IsEnd() {
		rec, err := configparam.ReadRecord(buf)
		if err != nil {
			return InitialEnts{}, err
		}
		ents.Records = append(ents.Records, rec)
	}
	return ents, nil
}
