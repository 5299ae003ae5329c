package sshauth

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorizedKeyLine(t *testing.T, pub any) string {
	t.Helper()
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return string(ssh.MarshalAuthorizedKey(sshPub))
}

func TestVerifySignatureEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyLine := authorizedKeyLine(t, pub)

	message := []byte("challenge-nonce")
	sig := ed25519.Sign(priv, message)

	ok, err := VerifySignature(keyLine, message, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySignatureEd25519RejectsWrongMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyLine := authorizedKeyLine(t, pub)

	sig := ed25519.Sign(priv, []byte("challenge-nonce"))

	ok, err := VerifySignature(keyLine, []byte("different-nonce"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySignatureRSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyLine := authorizedKeyLine(t, &priv.PublicKey)

	message := []byte("challenge-nonce")
	sum := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, sum[:])
	require.NoError(t, err)

	ok, err := VerifySignature(keyLine, message, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySignatureRSARejectsTamperedSignature(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyLine := authorizedKeyLine(t, &priv.PublicKey)

	message := []byte("challenge-nonce")
	sum := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, sum[:])
	require.NoError(t, err)
	sig[0] ^= 0xFF

	ok, err := VerifySignature(keyLine, message, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySignatureRejectsMalformedKey(t *testing.T) {
	_, err := VerifySignature("not-a-valid-key", []byte("x"), []byte("y"))
	assert.Error(t, err)
}

func TestVerifySignatureRejectsWrongKeyEntirely(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyLine := authorizedKeyLine(t, pub)

	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sig := ed25519.Sign(otherPriv, []byte("challenge-nonce"))

	ok, err := VerifySignature(keyLine, []byte("challenge-nonce"), sig)
	require.NoError(t, err)
	assert.False(t, ok, "signature from an unrelated key must not verify")
}
