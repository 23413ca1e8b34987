package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrKeyMismatch is returned when a wallet's key does not control its address.
var ErrKeyMismatch = errors.New("key does not match wallet address")

// SignMessage signs a message using EIP-191 (personal_sign).
// The message is prefixed with "\x19Ethereum Signed Message:\n<len>" before hashing.
// Returns a 65-byte signature (R || S || V).
func SignMessage(w *Wallet, ks KeystoreBackend, message []byte) ([]byte, error) {
	privKey, err := privateKey(w, ks)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(eip191Hash(message), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}

	// Adjust V from 0/1 to 27/28 for Ethereum compatibility.
	sig[64] += 27
	return sig, nil
}

// VerifyMessage recovers the signer address from an EIP-191 signature.
func VerifyMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(sig))
	}

	recoverSig := make([]byte, 65)
	copy(recoverSig, sig)
	if recoverSig[64] >= 27 {
		recoverSig[64] -= 27
	}

	pubKey, err := crypto.SigToPub(eip191Hash(message), recoverSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// ProveOwnership signs a fresh challenge with the wallet's key and checks
// that the recovered signer is the wallet address. Only a proven address may
// act as a caller of a state-changing operation.
func ProveOwnership(w *Wallet, ks KeystoreBackend) (common.Address, error) {
	challenge := []byte(fmt.Sprintf("govtoken: act as %s at %d", w.Address, time.Now().UnixNano()))
	sig, err := SignMessage(w, ks, challenge)
	if err != nil {
		return common.Address{}, err
	}
	signer, err := VerifyMessage(challenge, sig)
	if err != nil {
		return common.Address{}, err
	}
	if signer != w.Addr() {
		return common.Address{}, fmt.Errorf("%w: %s signs as %s", ErrKeyMismatch, w.Name, signer.Hex())
	}
	return signer, nil
}

func privateKey(w *Wallet, ks KeystoreBackend) (*ecdsa.PrivateKey, error) {
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}
	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return privKey, nil
}

// eip191Hash returns the Keccak-256 hash of the EIP-191 prefixed message.
func eip191Hash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	data := append([]byte(prefix), message...)
	return crypto.Keccak256(data)
}
