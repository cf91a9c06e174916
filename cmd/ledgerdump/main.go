// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dblokhin/ledgercore/block"
	"github.com/dblokhin/ledgercore/packer"
)

func init() {
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// ledgerdump decodes a block from a binary file given on the command
// line and prints its header fields and consistency check. It exists
// to exercise block.DecodeBlock end-to-end against real bytes, the way
// a node operator would when diagnosing a rejected block.
func main() {
	if len(os.Args) != 2 {
		logrus.Fatal("usage: ledgerdump <block-file>")
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		logrus.WithError(err).Fatal("reading block file")
	}

	buf := packer.NewReadBuf(raw)
	b, err := block.DecodeBlock(buf)
	if err != nil {
		logrus.WithError(err).Fatal("decoding block")
	}

	id := b.Hash()
	fmt.Printf("block id:       %x\n", id.Bytes())
	fmt.Printf("version:        %d\n", b.Header.Version)
	fmt.Printf("consensus:      %d\n", b.Header.ConsensusVersion)
	fmt.Printf("chain length:   %d\n", b.Header.ChainLength)
	fmt.Printf("epoch/slot:     %d/%d\n", b.Header.Date.Epoch, b.Header.Date.SlotID)
	fmt.Printf("parent:         %x\n", b.Header.ParentHash.Bytes())
	fmt.Printf("content hash:   %x\n", b.Header.ContentHash.Bytes())
	fmt.Printf("content size:   %d\n", b.Header.ContentSize)
	fmt.Printf("messages:       %d\n", len(b.Contents.Messages))
	fmt.Printf("consistent:     %v\n", b.IsConsistent())

	if !b.IsConsistent() {
		gotHash, gotSize := block.ComputeHashSize(b.Contents)
		logrus.WithFields(logrus.Fields{
			"want_hash": b.Header.ContentHash.Bytes(),
			"got_hash":  gotHash.Bytes(),
			"want_size": b.Header.ContentSize,
			"got_size":  gotSize,
		}).Error("block content hash/size mismatch")
		os.Exit(1)
	}
}
