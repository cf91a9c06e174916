// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package settings implements the protocol-parameter update codec
// (spec.md C4): UpdateProposal, a record where every field is optional,
// and Settings, the single mutable record in this module — mutated only
// by producing a new value via Apply, never in place.
package settings

import (
	"fmt"

	"github.com/dblokhin/ledgercore/configparam"
	"github.com/dblokhin/ledgercore/hash"
	"github.com/dblokhin/ledgercore/packer"
)

// ConsensusVersion selects which header proof variant a block under
// this chain uses.
type ConsensusVersion uint16

const (
	ConsensusBFT          ConsensusVersion = 1
	ConsensusGenesisPraos ConsensusVersion = 2
)

// LinearFee is configparam.LinearFee re-exported under settings;
// kept as a distinct name so settings callers don't need to import
// configparam themselves.
type LinearFee = configparam.LinearFee

// UpdateProposal carries at most one value per field; applying it to a
// Settings overwrites only the fields present.
type UpdateProposal struct {
	MaxTxPerBlock        *uint32
	BootstrapKeySlotsPct *uint8
	ConsensusVersion     *ConsensusVersion
	BftLeaders           []hash.Blake2b224
	AllowAccountCreation *bool
	LinearFees           *LinearFee
	SlotDuration         *uint8
	EpochStabilityDepth  *uint32
}

// NewUpdateProposal returns an UpdateProposal with every field absent.
func NewUpdateProposal() UpdateProposal {
	return UpdateProposal{}
}

// Serialize writes the proposal as a stream of (u16 tag, payload)
// records in ascending tag order, terminated by tag=0 (End).
func (u UpdateProposal) Serialize(w *packer.Codec) error {
	if u.MaxTxPerBlock != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagMaxTxPerBlock, MaxTxPerBlock: *u.MaxTxPerBlock}); err != nil {
			return err
		}
	}
	if u.BootstrapKeySlotsPct != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagBootstrapKeySlotsPct, BootstrapKeySlotsPct: *u.BootstrapKeySlotsPct}); err != nil {
			return err
		}
	}
	if u.ConsensusVersion != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagConsensusVersion, ConsensusVersion: uint16(*u.ConsensusVersion)}); err != nil {
			return err
		}
	}
	if u.BftLeaders != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagBftLeaders, BftLeaders: u.BftLeaders}); err != nil {
			return err
		}
	}
	if u.AllowAccountCreation != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagAllowAccountCreation, AllowAccountCreation: *u.AllowAccountCreation}); err != nil {
			return err
		}
	}
	if u.LinearFees != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagLinearFee, LinearFee: *u.LinearFees}); err != nil {
			return err
		}
	}
	if u.SlotDuration != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagSlotDuration, SlotDuration: *u.SlotDuration}); err != nil {
			return err
		}
	}
	if u.EpochStabilityDepth != nil {
		if err := configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagEpochStabilityDepth, EpochStabilityDepth: *u.EpochStabilityDepth}); err != nil {
			return err
		}
	}
	return configparam.WriteRecord(w, configparam.Record{Tag: configparam.TagEnd})
}

// Deserialize reads records until the End tag. Order is not required on
// read (§4.4): a field present more than once takes the last value.
func Deserialize(buf *packer.ReadBuf) (UpdateProposal, error) {
	var u UpdateProposal
	for {
		rec, err := configparam.ReadRecord(buf)
		if err != nil {
			return UpdateProposal{}, err
		}
		switch rec.Tag {
		case configparam.TagEnd:
			return u, nil
		case configparam.TagMaxTxPerBlock:
			v := rec.MaxTxPerBlock
			u.MaxTxPerBlock = &v
		case configparam.TagBootstrapKeySlotsPct:
			v := rec.BootstrapKeySlotsPct
			u.BootstrapKeySlotsPct = &v
		case configparam.TagConsensusVersion:
			v := ConsensusVersion(rec.ConsensusVersion)
			if v != ConsensusBFT && v != ConsensusGenesisPraos {
				return UpdateProposal{}, &packer.StructureInvalidError{Msg: fmt.Sprintf("unrecognized consensus version %d", rec.ConsensusVersion)}
			}
			u.ConsensusVersion = &v
		case configparam.TagBftLeaders:
			u.BftLeaders = rec.BftLeaders
		case configparam.TagAllowAccountCreation:
			v := rec.AllowAccountCreation
			u.AllowAccountCreation = &v
		case configparam.TagLinearFee:
			v := rec.LinearFee
			u.LinearFees = &v
		case configparam.TagSlotDuration:
			v := rec.SlotDuration
			u.SlotDuration = &v
		case configparam.TagEpochStabilityDepth:
			v := rec.EpochStabilityDepth
			u.EpochStabilityDepth = &v
		}
	}
}

// Settings is the sole mutable record in this module: mutation is
// expressed as producing a new Settings via Apply, never in place, so
// concurrent Apply calls on distinct handles are race-free (spec.md §5).
type Settings struct {
	MaxTxPerBlock        uint32
	BootstrapKeySlotsPct uint8
	ConsensusVersion     ConsensusVersion
	BftLeaders           []hash.Blake2b224
	AllowAccountCreation bool
	LinearFees           LinearFee
	SlotDuration         uint8
	EpochStabilityDepth  uint32
}

// SlotsPercentageRange is the full range for BootstrapKeySlotsPct.
const SlotsPercentageRange = 100

// New returns the default Settings for a fresh chain (spec.md §4.4).
func New() Settings {
	return Settings{
		MaxTxPerBlock:        100,
		BootstrapKeySlotsPct: SlotsPercentageRange,
		ConsensusVersion:     ConsensusBFT,
		BftLeaders:           nil,
		AllowAccountCreation: false,
		LinearFees:           LinearFee{},
		SlotDuration:         10,
		EpochStabilityDepth:  10,
	}
}

// Apply returns a new Settings equal to s except for the fields present
// in update, which are overwritten.
func (s Settings) Apply(update UpdateProposal) Settings {
	out := s
	if update.MaxTxPerBlock != nil {
		out.MaxTxPerBlock = *update.MaxTxPerBlock
	}
	if update.BootstrapKeySlotsPct != nil {
		out.BootstrapKeySlotsPct = *update.BootstrapKeySlotsPct
	}
	if update.ConsensusVersion != nil {
		out.ConsensusVersion = *update.ConsensusVersion
	}
	if update.BftLeaders != nil {
		leaders := make([]hash.Blake2b224, len(update.BftLeaders))
		copy(leaders, update.BftLeaders)
		out.BftLeaders = leaders
	}
	if update.AllowAccountCreation != nil {
		out.AllowAccountCreation = *update.AllowAccountCreation
	}
	if update.LinearFees != nil {
		out.LinearFees = *update.LinearFees
	}
	if update.SlotDuration != nil {
		out.SlotDuration = *update.SlotDuration
	}
	if update.EpochStabilityDepth != nil {
		out.EpochStabilityDepth = *update.EpochStabilityDepth
	}
	return out
}

// Error is the settings package's logic-error family (spec.md §7),
// distinct from the decode-time errors in package packer.
type Error struct {
	kind        errorKind
	expected    hash.Blake2b256
	got         hash.Blake2b256
}

type errorKind int

const (
	errInvalidCurrentBlockID errorKind = iota
	errUpdateIsInvalid
)

func (e *Error) Error() string {
	switch e.kind {
	case errInvalidCurrentBlockID:
		return fmt.Sprintf("settings: update needs to be applied to block %x but received %x", e.expected.Bytes(), e.got.Bytes())
	default:
		return "settings: update does not apply to current state"
	}
}

// ErrInvalidCurrentBlockID reports an update offered against the wrong
// chain tip.
func ErrInvalidCurrentBlockID(expected, got hash.Blake2b256) error {
	return &Error{kind: errInvalidCurrentBlockID, expected: expected, got: got}
}

// ErrUpdateIsInvalid reports a proposal rejected by semantic checks.
func ErrUpdateIsInvalid() error {
	return &Error{kind: errUpdateIsInvalid}
}
