package txwitness

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dblokhin/ledgercore/hash"
	"github.com/dblokhin/ledgercore/key"
	"github.com/dblokhin/ledgercore/packer"
)

func seed32(fill byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = fill
	}
	return s
}

// S4: the account spending-counter preimage for txid=0x00..00,
// counter=1 begins 02 00...00 00 00 00 01 (tag, 32 zero bytes, then the
// big-endian counter).
func TestAccountPreimageVector(t *testing.T) {
	var zero hash.Blake2b256
	preimage := AccountPreimage(zero, 1)

	require.Len(t, preimage, 1+32+4)
	assert.Equal(t, byte(0x02), preimage[0])
	assert.Equal(t, make([]byte, 32), preimage[1:33])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, preimage[33:])

	want, err := hex.DecodeString("02000000000000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, want, preimage)
}

func TestAccountWitnessVerify(t *testing.T) {
	sk, err := key.GenerateSecretKey(key.Ed25519, seed32(0x07))
	require.NoError(t, err)
	pub := sk.DerivePublic()

	var txID hash.Blake2b256
	txID[0] = 0xAB
	preimage := AccountPreimage(txID, 3)
	sig := sk.Sign(preimage)

	w := NewAccountWitness(sig)
	verification, err := VerifyAccount(w, pub, txID, 3)
	require.NoError(t, err)
	assert.Equal(t, key.Success, verification)

	// a different spending counter must fail verification: this is what
	// prevents witness replay across spends of the same account.
	verification, err = VerifyAccount(w, pub, txID, 4)
	require.NoError(t, err)
	assert.Equal(t, key.Failed, verification)
}

func TestUTXOWitnessRoundTripAndVerify(t *testing.T) {
	sk, err := key.GenerateSecretKey(key.Ed25519, seed32(0x09))
	require.NoError(t, err)
	pub := sk.DerivePublic()

	var txID hash.Blake2b256
	txID[0] = 0x11
	sig := sk.Sign(txID.Bytes())

	w := NewUTXOWitness(sig)
	buf := packer.NewReadBuf(w.Bytes())
	decoded, err := Read(buf)
	require.NoError(t, err)
	assert.Equal(t, KindUTXO, decoded.Kind())

	verification, err := Verify(pub, txID, decoded)
	require.NoError(t, err)
	assert.Equal(t, key.Success, verification)
}

func TestOldUTXOVerifyIsUnsupportedNotPanic(t *testing.T) {
	sk, err := key.GenerateSecretKey(key.Ed25519Bip32, seed32(0x0A))
	require.NoError(t, err)
	pub := sk.DerivePublic()
	sig := sk.Sign([]byte("legacy"))

	w := NewOldUTXOWitness(pub, sig)

	assert.NotPanics(t, func() {
		_, err := Verify(pub, hash.Blake2b256{}, w)
		assert.Error(t, err)
	})
}

func TestReadRejectsUnknownKind(t *testing.T) {
	buf := packer.NewReadBuf([]byte{0x09})
	_, err := Read(buf)
	require.Error(t, err)
	var unknownTag *packer.UnknownTagError
	require.ErrorAs(t, err, &unknownTag)
}

func TestOldUTXOWitnessRoundTrip(t *testing.T) {
	sk, err := key.GenerateSecretKey(key.Ed25519Bip32, seed32(0x0B))
	require.NoError(t, err)
	pub := sk.DerivePublic()
	sig := sk.Sign([]byte("legacy payload"))

	w := NewOldUTXOWitness(pub, sig)
	buf := packer.NewReadBuf(w.Bytes())
	decoded, err := Read(buf)
	require.NoError(t, err)

	assert.Equal(t, KindOldUTXO, decoded.Kind())
	assert.Equal(t, pub.Bytes, decoded.OldUTXOPublicKey.Bytes)
	assert.Equal(t, sig.Bytes, decoded.OldUTXOSignature.Bytes)
}
