package bunq

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

const installationKeyBits = 2048

// GeneratePublicKeyPEM creates a fresh RSA key pair and returns the PKIX public key as PEM,
// the format POST /installation expects.
func GeneratePublicKeyPEM() (string, error) {
	key, err := rsa.GenerateKey(rand.Reader, installationKeyBits)
	if err != nil {
		return "", fmt.Errorf("generate installation key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("marshal installation key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// LoadPublicKeyPEM reads a PEM public key from disk and checks that it parses.
func LoadPublicKeyPEM(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read public key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return "", fmt.Errorf("public key %s is not PEM encoded", path)
	}
	if _, err := x509.ParsePKIXPublicKey(block.Bytes); err != nil {
		return "", fmt.Errorf("parse public key %s: %w", path, err)
	}
	return string(raw), nil
}
