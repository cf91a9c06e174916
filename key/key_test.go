package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed32(fill byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = fill
	}
	return s
}

func TestSignVerifyRoundTrip(t *testing.T) {
	sk, err := GenerateSecretKey(Ed25519, seed32(0x01))
	require.NoError(t, err)

	pair := NewKeyPair(sk)
	msg := []byte("transaction body")
	sig := sk.Sign(msg)

	assert.Equal(t, Success, Verify(pair.Public, msg, sig))
	assert.Equal(t, Failed, Verify(pair.Public, []byte("tampered"), sig))
}

func TestVerifySchemeMismatchFails(t *testing.T) {
	sk, err := GenerateSecretKey(Ed25519, seed32(0x02))
	require.NoError(t, err)
	pub := sk.DerivePublic()
	sig := sk.Sign([]byte("msg"))

	sig.Scheme = Ed25519Extended
	assert.Equal(t, Failed, Verify(pub, []byte("msg"), sig))
}

func TestBip32PublicKeyCarriesChainCode(t *testing.T) {
	sk, err := GenerateSecretKey(Ed25519Bip32, seed32(0x03))
	require.NoError(t, err)
	pub := sk.DerivePublic()
	assert.Len(t, pub.Bytes, Ed25519Bip32.PublicWidth())
	assert.Equal(t, 64, Ed25519Bip32.PublicWidth())
	assert.Equal(t, 32, Ed25519.PublicWidth())
}

func TestPublicKeyFromSliceRejectsWrongWidth(t *testing.T) {
	_, err := PublicKeyFromSlice(Ed25519, make([]byte, 10))
	require.Error(t, err)
}

func TestSignatureFromSliceRejectsWrongWidth(t *testing.T) {
	_, err := SignatureFromSlice(Ed25519, make([]byte, 10))
	require.Error(t, err)
}

func TestGenerateSecretKeyRejectsWrongSeedSize(t *testing.T) {
	_, err := GenerateSecretKey(Ed25519, make([]byte, 10))
	require.Error(t, err)
}

func TestVerificationString(t *testing.T) {
	assert.Equal(t, "Success", Success.String())
	assert.Equal(t, "Failed", Failed.String())
}
