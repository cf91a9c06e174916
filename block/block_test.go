package block

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dblokhin/ledgercore/hash"
	"github.com/dblokhin/ledgercore/message"
	"github.com/dblokhin/ledgercore/packer"
)

func sampleContents() BlockContents {
	return BlockContents{Messages: []message.MessageRaw{
		{MsgTag: message.TagInitial, Payload: []byte{0x00, 0x07, 0x0a}},
		{MsgTag: message.TagOpaque, Payload: []byte("hello")},
	}}
}

func sampleHeader(contents BlockContents) Header {
	contentHash, contentSize := ComputeHashSize(contents)
	return Header{
		Version:          BlockVersion1,
		ConsensusVersion: ConsensusBFT,
		ChainLength:      42,
		Date:             BlockDate{Epoch: 3, SlotID: 7},
		ParentHash:       hash.HashBlake2b256([]byte("parent")),
		ContentHash:      contentHash,
		ContentSize:      contentSize,
		Proof: Proof{
			Version: ConsensusBFT,
			BFT: BFTProof{
				LeaderID: hash.HashBlake2b224([]byte("leader")),
			},
		},
	}
}

func TestHeaderRoundTripBFT(t *testing.T) {
	contents := sampleContents()
	h := sampleHeader(contents)

	buff := new(bytes.Buffer)
	require.NoError(t, WriteHeader(packer.NewCodec(buff), h))

	decoded, err := ReadHeader(packer.NewReadBuf(buff.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestHeaderRoundTripGenesisPraos(t *testing.T) {
	contents := sampleContents()
	contentHash, contentSize := ComputeHashSize(contents)
	h := Header{
		Version:          BlockVersion1,
		ConsensusVersion: ConsensusGenesisPraos,
		ChainLength:      1,
		Date:             BlockDate{Epoch: 0, SlotID: 0},
		ParentHash:       hash.HashBlake2b256([]byte("genesis")),
		ContentHash:      contentHash,
		ContentSize:      contentSize,
		Proof: Proof{
			Version: ConsensusGenesisPraos,
			Genesis: GenesisPraosProof{},
		},
	}

	buff := new(bytes.Buffer)
	require.NoError(t, WriteHeader(packer.NewCodec(buff), h))

	decoded, err := ReadHeader(packer.NewReadBuf(buff.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestHeaderHashChangesWithChainLength(t *testing.T) {
	h1 := sampleHeader(sampleContents())
	h2 := h1
	h2.ChainLength = 99

	assert.False(t, h1.Hash().Equal(h2.Hash()))
}

func TestBlockIsConsistent(t *testing.T) {
	contents := sampleContents()
	b := Block{Header: sampleHeader(contents), Contents: contents}
	assert.True(t, b.IsConsistent())
}

func TestBlockIsInconsistentWhenContentsChangeAfterHeader(t *testing.T) {
	contents := sampleContents()
	header := sampleHeader(contents)

	tampered := contents
	tampered.Messages = append(tampered.Messages, message.MessageRaw{MsgTag: message.TagOpaque, Payload: []byte("extra")})

	b := Block{Header: header, Contents: tampered}
	assert.False(t, b.IsConsistent())
}

func TestBlockRoundTrip(t *testing.T) {
	contents := sampleContents()
	b := Block{Header: sampleHeader(contents), Contents: contents}

	decoded, err := DecodeBlock(packer.NewReadBuf(b.Bytes()))
	require.NoError(t, err)
	assert.True(t, decoded.IsConsistent())
	assert.True(t, b.Hash().Equal(decoded.Hash()))
	assert.Equal(t, len(contents.Messages), len(decoded.Contents.Messages))
}

// S5: a crafted message inside a block's content claiming a size that
// extends past the block's declared content size must be rejected by
// the decode loop, not silently accepted (the overrun bug fix).
func TestDecodeBlockContentsRejectsOverrun(t *testing.T) {
	// one well-formed message (u16 len=4, tag+3 payload bytes = 6 bytes
	// total) followed by a second message claiming a length that
	// overruns the declared contentSize.
	buff := new(bytes.Buffer)
	codec := packer.NewCodec(buff)
	require.NoError(t, message.WriteMessageRaw(codec, message.TagOpaque, []byte{0x01, 0x02, 0x03}))
	firstMsgLen := buff.Len()

	// second message's own framing is internally valid (it has enough
	// bytes available in the full buffer), but its declared length
	// pushes total consumption past contentSize.
	require.NoError(t, message.WriteMessageRaw(codec, message.TagOpaque, []byte{0x04, 0x05, 0x06, 0x07, 0x08}))

	// declare a contentSize that only covers the first message plus one
	// stray byte of the second message's framing.
	contentSize := uint32(firstMsgLen + 1)

	_, err := DecodeBlockContents(packer.NewReadBuf(buff.Bytes()), contentSize)
	require.Error(t, err)
}

func TestDecodeBlockContentsRejectsDeclaredSizeBiggerThanBuffer(t *testing.T) {
	contents := sampleContents()
	raw := contents.Bytes()

	_, err := DecodeBlockContents(packer.NewReadBuf(raw), uint32(len(raw)+10))
	require.Error(t, err)
	var notEnough *packer.NotEnoughError
	require.ErrorAs(t, err, &notEnough)
}

func TestDecodeBlockContentsEmpty(t *testing.T) {
	decoded, err := DecodeBlockContents(packer.NewReadBuf(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, decoded.Messages)
}

func TestReadHeaderRejectsUnknownProofTag(t *testing.T) {
	contents := sampleContents()
	h := sampleHeader(contents)
	h.Proof.Version = ConsensusVersion(99)

	// write a header whose proof tag byte is 99: Bytes emits the tag
	// and, for an unknown version, no proof body.
	buff := new(bytes.Buffer)
	codec := packer.NewCodec(buff)
	raw := h.Bytes()
	require.NoError(t, codec.PutU16(uint16(len(raw))))
	require.NoError(t, codec.PutBytes(raw))

	_, err := ReadHeader(packer.NewReadBuf(buff.Bytes()))
	require.Error(t, err)
}
