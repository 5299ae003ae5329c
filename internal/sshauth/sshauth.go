// Package sshauth verifies the SSH public-key challenge/response login:
// an Ed25519 or RSA (PKCS#1 v1.5 over SHA-256) signature of a server-issued
// nonce, checked against a key the user previously registered.
package sshauth

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"

	"golang.org/x/crypto/ssh"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// VerifySignature reports whether sig is a valid signature of message under
// the OpenSSH authorized_keys-format public key line keyLine. Only
// ed25519 and rsa keys are supported; any other key algorithm is rejected
// as Invalid rather than silently treated as unverifiable.
func VerifySignature(keyLine string, message, sig []byte) (bool, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(keyLine))
	if err != nil {
		return false, apperr.Wrap(err, apperr.CodeInvalid, "parse SSH public key")
	}

	cryptoKey, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return false, apperr.Invalid("unsupported SSH key type")
	}

	switch key := cryptoKey.CryptoPublicKey().(type) {
	case ed25519.PublicKey:
		return ed25519.Verify(key, message, sig), nil
	case *rsa.PublicKey:
		sum := sha256.Sum256(message)
		return rsa.VerifyPKCS1v15(key, crypto.SHA256, sum[:], sig) == nil, nil
	default:
		return false, apperr.Invalid("unsupported SSH key algorithm")
	}
}
