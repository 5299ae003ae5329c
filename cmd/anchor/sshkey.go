package main

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// loadSigner reads an OpenSSH-format private key from path and returns the
// raw key material needed to sign a login challenge directly, mirroring
// sshauth.VerifySignature's supported algorithms exactly.
func loadSigner(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity file: %w", err)
	}

	key, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		if passErr, ok := err.(*ssh.PassphraseMissingError); ok {
			_ = passErr
			passphrase, perr := promptPassword("Key passphrase: ")
			if perr != nil {
				return nil, perr
			}
			key, err = ssh.ParseRawPrivateKeyWithPassphrase(data, []byte(passphrase))
		}
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
	}

	switch k := key.(type) {
	case *ed25519.PrivateKey:
		return k, nil
	case *rsa.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
}

// signChallenge signs message with signer using the same scheme
// sshauth.VerifySignature checks it against: raw Ed25519, or RSA PKCS#1
// v1.5 over a SHA-256 digest.
func signChallenge(signer any, message string) ([]byte, error) {
	switch k := signer.(type) {
	case *ed25519.PrivateKey:
		return ed25519.Sign(*k, []byte(message)), nil
	case *rsa.PrivateKey:
		sum := sha256.Sum256([]byte(message))
		return rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, sum[:])
	default:
		return nil, fmt.Errorf("unsupported signer type %T", signer)
	}
}
