package crypto

import (
	"bytes"
	"testing"

	"github.com/cerberus-vault/cerberus/cerberustest/assert"
	"github.com/gogo/protobuf/proto"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig, err := private.Sign(msg)
	assert.Nil(t, err)
	sig2, err := private.Sign(msg2)
	assert.Nil(t, err)

	bz, err := proto.Marshal(sig)
	assert.Nil(t, err)
	bz2, err := proto.Marshal(sig2)
	assert.Nil(t, err)
	if bytes.Equal(bz, bz2) {
		t.Fatal("marshaling different signatures produce the same binary representation")
	}

	if !public.Verify(msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if !public.Verify(msg2, sig2) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if public.Verify(msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}
	if public.Verify(msg, &Signature{}) {
		t.Fatal("verified an empty signature of a message")
	}
	if public.Verify(msg, nil) {
		t.Fatal("verified a nil signature of a message")
	}
	if GenPrivKeyEd25519().PublicKey().Verify(msg, sig) {
		t.Fatal("verified a signature with another key")
	}
}

func TestEd25519Address(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	pub2 := GenPrivKeyEd25519().PublicKey()
	empty := PublicKey{}

	assert.Nil(t, pub.Condition().Validate())
	assert.Nil(t, pub2.Condition().Validate())
	if bytes.Equal(pub.Condition(), pub2.Condition()) {
		t.Fatal("different public keys produce the same condition")
	}
	assert.Nil(t, empty.Condition())
	assert.Nil(t, empty.Address())
	assert.Nil(t, pub.Address().Validate())

	bz, err := proto.Marshal(pub)
	assert.Nil(t, err)
	var read PublicKey
	assert.Nil(t, proto.Unmarshal(bz, &read))
	assert.Equal(t, read.Condition(), pub.Condition())
	assert.Equal(t, read.Address(), pub.Address())
}

func TestEd25519PrivateKeySign(t *testing.T) {
	pk := &PrivateKey{Ed25519: make([]byte, 64)}
	sig, err := pk.Sign([]byte("foo bar"))
	if err != nil {
		t.Fatalf("cannot sign: %s", err)
	}
	want := []byte("\273\363\352\214\365\004\271\371|}\272G\316\316K\005\337Bm\340\322\007W\224-9\272\371\226\375DB\325\325\373#e\321^\030\367]\370\334\372\017\223`\036\236Ue\211\244\220\002\004\026K\227\306i\002\017")
	if !bytes.Equal(want, sig.GetEd25519()) {
		t.Logf("want %X", want)
		t.Logf(" got %X", sig.GetEd25519())
		t.Fatal("invalid signature")
	}
}

func TestEmptyPrivateKeySign(t *testing.T) {
	emptyKey := &PrivateKey{}
	if sig, err := emptyKey.Sign([]byte("foo bar")); err == nil {
		t.Fatalf("want an error, got %q", sig)
	}
}

func TestEmptyPublicKeyVerify(t *testing.T) {
	sig := Signature{Ed25519: []byte("sig 5")}
	var empty PublicKey
	if empty.Verify([]byte("foo"), &sig) {
		t.Fatal("empty public key must not pass verification")
	}
}

func TestPrivKeyEd25519FromSeed(t *testing.T) {
	cases := map[string]struct {
		seed     []byte
		expected []byte
	}{
		"success 1": {
			seed:     []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expected: []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 59, 106, 39, 188, 206, 182, 164, 45, 98, 163, 168, 208, 42, 111, 13, 115, 101, 50, 21, 119, 29, 226, 67, 166, 58, 192, 72, 161, 139, 89, 218, 41},
		},
		"success 2": {
			seed:     []byte{31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31},
			expected: []byte{31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 67, 4, 107, 254, 64, 146, 179, 233, 73, 148, 234, 218, 21, 220, 194, 13, 138, 170, 7, 182, 88, 253, 57, 84, 235, 142, 14, 251, 139, 220, 165, 222},
		},
		"failure no seed": {
			seed:     nil,
			expected: nil,
		},
		"failure wrong seed size (n<32)": {
			seed:     []byte{0},
			expected: nil,
		},
		"failure wrong seed size (n>32)": {
			seed:     []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expected: nil,
		},
	}

	for _, tc := range cases {
		if tc.expected != nil {
			privKey := PrivKeyEd25519FromSeed(tc.seed)
			assert.Equal(t, tc.expected, privKey.Ed25519)
		} else {
			assert.Panics(t, func() { PrivKeyEd25519FromSeed(tc.seed) })
		}
	}
}
