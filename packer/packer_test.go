package packer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBufRoundTrip(t *testing.T) {
	buff := new(bytes.Buffer)
	codec := NewCodec(buff)
	require.NoError(t, codec.PutU8(0x42))
	require.NoError(t, codec.PutU16(0x1234))
	require.NoError(t, codec.PutU32(0xdeadbeef))
	require.NoError(t, codec.PutU64(0x0102030405060708))
	require.NoError(t, codec.PutU128(0x1111111111111111, 0x2222222222222222))
	require.NoError(t, codec.PutBytes([]byte("trailer")))

	buf := NewReadBuf(buff.Bytes())

	u8, err := buf.GetU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), u8)

	u16, err := buf.GetU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := buf.GetU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := buf.GetU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	hi, lo, err := buf.GetU128()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1111111111111111), hi)
	assert.Equal(t, uint64(0x2222222222222222), lo)

	rest, err := buf.GetSlice(len("trailer"))
	require.NoError(t, err)
	assert.Equal(t, "trailer", string(rest))

	assert.True(t, buf.IsEnd())
	assert.Equal(t, 0, buf.Remaining())
}

func TestReadBufNotEnough(t *testing.T) {
	buf := NewReadBuf([]byte{0x01})
	_, err := buf.GetU32()
	require.Error(t, err)

	var notEnough *NotEnoughError
	require.ErrorAs(t, err, &notEnough)
	assert.Equal(t, 4, notEnough.Requested)
	assert.Equal(t, 1, notEnough.Remaining)
}

func TestReadBufGetSliceDoesNotCopy(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	buf := NewReadBuf(data)
	s, err := buf.GetSlice(4)
	require.NoError(t, err)
	s[0] = 0xFF
	assert.Equal(t, byte(0xFF), data[0], "GetSlice must return a window over the original backing array")
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&NotEnoughError{Requested: 4, Remaining: 1}).Error(), "4")
	assert.Contains(t, (&StructureInvalidError{Msg: "bad"}).Error(), "bad")
	assert.Contains(t, (&UnknownTagError{Tag: 99}).Error(), "99")
	assert.Contains(t, (&SizeTooBigError{Size: 70000}).Error(), "70000")
}
