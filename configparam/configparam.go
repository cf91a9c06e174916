// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package configparam holds the single (u16 tag, payload) record shape
// shared by the two protocol-parameter codecs: message.InitialEnts,
// which consumes a stream of these until end-of-buffer, and
// settings.UpdateProposal, which consumes the same stream terminated by
// a trailing End tag (spec.md §4.4). Grounded on src/p2p/messages.go's
// tag-dispatch Bytes/Read pattern.
package configparam

import (
	"github.com/dblokhin/ledgercore/hash"
	"github.com/dblokhin/ledgercore/packer"
)

// Tag identifies the shape of a record's payload. The registry is
// closed: an unrecognized tag is always a fatal UnknownTagError.
type Tag uint16

const (
	TagEnd                  Tag = 0
	TagMaxTxPerBlock        Tag = 1
	TagBootstrapKeySlotsPct Tag = 2
	TagConsensusVersion     Tag = 3
	TagBftLeaders           Tag = 4
	TagAllowAccountCreation Tag = 5
	TagLinearFee            Tag = 6
	TagSlotDuration         Tag = 7
	TagEpochStabilityDepth  Tag = 8
)

// LinearFee is the (constant, coefficient, certificate) fee schedule
// carried by a TagLinearFee record.
type LinearFee struct {
	Constant    uint64
	Coefficient uint64
	Certificate uint64
}

// Record is one decoded (tag, payload) entry. Only the field matching
// Tag is meaningful.
type Record struct {
	Tag Tag

	MaxTxPerBlock        uint32
	BootstrapKeySlotsPct uint8
	ConsensusVersion     uint16
	BftLeaders           []hash.Blake2b224
	AllowAccountCreation bool
	LinearFee            LinearFee
	SlotDuration         uint8
	EpochStabilityDepth  uint32
}

// WriteRecord writes r's tag and payload. Callers are responsible for
// writing the closing TagEnd record themselves (UpdateProposal) or not
// (InitialEnts, which has none).
func WriteRecord(codec *packer.Codec, r Record) error {
	if err := codec.PutU16(uint16(r.Tag)); err != nil {
		return err
	}
	switch r.Tag {
	case TagEnd:
		return nil
	case TagMaxTxPerBlock:
		return codec.PutU32(r.MaxTxPerBlock)
	case TagBootstrapKeySlotsPct:
		return codec.PutU8(r.BootstrapKeySlotsPct)
	case TagConsensusVersion:
		return codec.PutU16(r.ConsensusVersion)
	case TagBftLeaders:
		if err := codec.PutU8(uint8(len(r.BftLeaders))); err != nil {
			return err
		}
		for _, leader := range r.BftLeaders {
			if err := codec.PutBytes(leader.Bytes()); err != nil {
				return err
			}
		}
		return nil
	case TagAllowAccountCreation:
		v := uint8(0)
		if r.AllowAccountCreation {
			v = 1
		}
		return codec.PutU8(v)
	case TagLinearFee:
		if err := codec.PutU64(r.LinearFee.Constant); err != nil {
			return err
		}
		if err := codec.PutU64(r.LinearFee.Coefficient); err != nil {
			return err
		}
		return codec.PutU64(r.LinearFee.Certificate)
	case TagSlotDuration:
		return codec.PutU8(r.SlotDuration)
	case TagEpochStabilityDepth:
		return codec.PutU32(r.EpochStabilityDepth)
	default:
		return &packer.UnknownTagError{Tag: uint32(r.Tag)}
	}
}

// ReadRecord reads one tag-dispatched record. An unrecognized tag is a
// fatal UnknownTagError — the registry is closed (spec.md §9).
func ReadRecord(buf *packer.ReadBuf) (Record, error) {
	tag, err := buf.GetU16()
	if err != nil {
		return Record{}, err
	}

	r := Record{Tag: Tag(tag)}
	switch r.Tag {
	case TagEnd:
		return r, nil
	case TagMaxTxPerBlock:
		r.MaxTxPerBlock, err = buf.GetU32()
	case TagBootstrapKeySlotsPct:
		r.BootstrapKeySlotsPct, err = buf.GetU8()
	case TagConsensusVersion:
		r.ConsensusVersion, err = buf.GetU16()
	case TagBftLeaders:
		var n uint8
		n, err = buf.GetU8()
		if err != nil {
			break
		}
		r.BftLeaders = make([]hash.Blake2b224, n)
		for i := range r.BftLeaders {
			var raw []byte
			raw, err = buf.GetSlice(hash.Blake2b224Size)
			if err != nil {
				break
			}
			r.BftLeaders[i], err = hash.Blake2b224FromSlice(raw)
			if err != nil {
				break
			}
		}
	case TagAllowAccountCreation:
		var v uint8
		v, err = buf.GetU8()
		r.AllowAccountCreation = v != 0
	case TagLinearFee:
		r.LinearFee.Constant, err = buf.GetU64()
		if err != nil {
			break
		}
		r.LinearFee.Coefficient, err = buf.GetU64()
		if err != nil {
			break
		}
		r.LinearFee.Certificate, err = buf.GetU64()
	case TagSlotDuration:
		r.SlotDuration, err = buf.GetU8()
	case TagEpochStabilityDepth:
		r.EpochStabilityDepth, err = buf.GetU32()
	default:
		return Record{}, &packer.UnknownTagError{Tag: uint32(tag)}
	}

	if err != nil {
		return Record{}, err
	}
	return r, nil
}
