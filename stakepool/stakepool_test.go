package stakepool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dblokhin/ledgercore/key"
)

func seed32(fill byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = fill
	}
	return s
}

func newTestInfo(t *testing.T, owners []StakeKeyId) StakePoolInfo {
	t.Helper()
	kesSK, err := key.GenerateSecretKey(key.Ed25519, seed32(0x20))
	require.NoError(t, err)
	vrfSK, err := key.GenerateSecretKey(key.Ed25519, seed32(0x21))
	require.NoError(t, err)

	return StakePoolInfo{
		SerialLo: 1,
		Owners:   owners,
		Initial: GenesisPraosLeader{
			KESPublicKey: kesSK.DerivePublic(),
			VRFPublicKey: vrfSK.DerivePublic(),
		},
	}
}

func newStakeKeyID(t *testing.T, fill byte) StakeKeyId {
	t.Helper()
	sk, err := key.GenerateSecretKey(key.Ed25519, seed32(fill))
	require.NoError(t, err)
	return NewStakeKeyId(sk.DerivePublic())
}

func TestToIDDeterministic(t *testing.T) {
	owners := []StakeKeyId{newStakeKeyID(t, 0x01), newStakeKeyID(t, 0x02)}
	info := newTestInfo(t, owners)

	id1 := info.ToID()
	id2 := info.ToID()
	assert.True(t, id1.Equal(id2))
}

// S6: reordering owners must change the pool id — owner order is part
// of the content-addressed preimage.
func TestToIDSensitiveToOwnerOrder(t *testing.T) {
	a := newStakeKeyID(t, 0x01)
	b := newStakeKeyID(t, 0x02)

	infoAB := newTestInfo(t, []StakeKeyId{a, b})
	infoBA := newTestInfo(t, []StakeKeyId{b, a})

	assert.False(t, infoAB.ToID().Equal(infoBA.ToID()))
}

func TestToIDSensitiveToSerial(t *testing.T) {
	owners := []StakeKeyId{newStakeKeyID(t, 0x01)}
	info1 := newTestInfo(t, owners)
	info2 := info1
	info2.SerialLo = 2

	assert.False(t, info1.ToID().Equal(info2.ToID()))
}

func TestStakeKeyIdDeterministic(t *testing.T) {
	sk, err := key.GenerateSecretKey(key.Ed25519, seed32(0x30))
	require.NoError(t, err)
	pub := sk.DerivePublic()

	id1 := NewStakeKeyId(pub)
	id2 := NewStakeKeyId(pub)
	assert.True(t, id1.Equal(id2))
}
