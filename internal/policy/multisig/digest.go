package multisig

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

var digestDomain = crypto.Keccak256([]byte("CypheraMultisigProposal(uint256 chainId,address account,uint64 nonce,string action,address to,uint256 value,bytes data,uint64 deadline)"))

// Digest is the hash owners sign to approve p on chainID.
func Digest(p *Proposal, chainID uint64) common.Hash {
	value := p.Value
	if value == nil {
		value = new(big.Int)
	}

	return crypto.Keccak256Hash(
		digestDomain,
		math.U256Bytes(new(big.Int).SetUint64(chainID)),
		p.Account.Bytes(),
		uint64Bytes(p.Nonce),
		crypto.Keccak256([]byte(p.ActionType)),
		p.Target.Bytes(),
		math.U256Bytes(new(big.Int).Set(value)),
		crypto.Keccak256(p.Data),
		uint64Bytes(uint64(p.Deadline.Unix())),
	)
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Verifier checks that sig is signer's approval of digest.
type Verifier interface {
	Verify(digest common.Hash, signer common.Address, sig []byte) error
}

// ECDSAVerifier verifies personal_sign (EIP-191) signatures, the form
// browser wallets produce for signMessage.
type ECDSAVerifier struct{}

func (ECDSAVerifier) Verify(digest common.Hash, signer common.Address, sig []byte) error {
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}

	normalized := append([]byte(nil), sig...)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(digest.Bytes()), normalized)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if recovered := crypto.PubkeyToAddress(*pub); recovered != signer {
		return fmt.Errorf("%w: recovered %s", ErrInvalidSignature, recovered.Hex())
	}
	return nil
}

// SignDigest produces the signature an owner's wallet would return for
// personal_sign over digest.
func SignDigest(key *ecdsa.PrivateKey, digest common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(digest.Bytes()), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
