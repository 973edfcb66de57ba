package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/crypto"
	"github.com/cerberus-vault/cerberus/errors"
)

// SignCodeV1 is the current way to prefix the bytes we use to build
// a signature
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures checks all the signatures on the tx and increments
// the sequence of every signer.
//
// returns list of signer conditions (possibly empty) in the order of
// signatures, or error if any signature is invalid
func VerifyTxSignatures(db cerberus.KVStore, tx SignedTx, vaultID string) ([]cerberus.Condition, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()

	signers := make([]cerberus.Condition, 0, len(sigs))
	for i, sig := range sigs {
		signer, err := VerifySignature(db, sig, bz, vaultID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks one signature against signbytes,
// check vault and updates state in the store
func VerifySignature(db cerberus.KVStore, sig *StdSignature, signBytes []byte, vaultID string) (cerberus.Condition, error) {
	if sig == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	// we guarantee sequence makes sense and pubkey is there
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	bucket := NewBucket()
	user, err := loadUser(bucket, db, sig.Pubkey)
	if err != nil {
		return nil, err
	}

	toSign, err := BuildSignBytes(signBytes, vaultID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !sig.Pubkey.Verify(toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Put(db, sig.Pubkey.Address(), user); err != nil {
		return nil, err
	}
	return sig.Pubkey.Condition(), nil
}

/*
BuildSignBytes combines all info on the actual tx before signing

We use the following format:

version | len(vaultID) | vaultID      | nonce             | signBytes
4bytes  | uint8        | ascii string | int64 (bigendian) | serialized transaction

The vault id separates the domains of signatures, so that a request signed
for one vault can never be accepted by another one.

This is then prehashed with sha512 before fed into
the public key signing/verification step
*/
func BuildSignBytes(signBytes []byte, vaultID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !cerberus.IsValidVaultID(vaultID) {
		return nil, errors.Wrapf(errors.ErrInput, "vault id: %v", vaultID)
	}

	// encode nonce as 8 byte, big-endian
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	output := make([]byte, 0, 4+1+len(vaultID)+8+len(signBytes))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(vaultID)))
	output = append(output, []byte(vaultID)...)
	output = append(output, nonce...)
	output = append(output, signBytes...)

	// now, we take the sha512 hash of the result,
	// so we have a constant length output to feed into eddsa
	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// BuildSignBytesTx calculates the sign bytes given a tx
func BuildSignBytesTx(tx SignedTx, vaultID string, seq int64) ([]byte, error) {
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(signBytes, vaultID, seq)
}

// SignTx creates a signature for the given tx
func SignTx(signer crypto.Signer, tx SignedTx, vaultID string, seq int64) (*StdSignature, error) {
	signBytes, err := BuildSignBytesTx(tx, vaultID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(signBytes)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}

// Sign appends a signature of given signer to the envelope. The sequence
// must be the next unused sequence of the signer, see NextNonce.
func Sign(tx *Tx, signer crypto.Signer, vaultID string, seq int64) error {
	sig, err := SignTx(signer, tx, vaultID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
