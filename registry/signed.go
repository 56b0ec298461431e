package registry

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/hexreg/hexreg/hexpb"
)

// Signature errors.
var (
	// ErrBadSigned is returned when a signed blob does not decode.
	ErrBadSigned = errors.New("registry: malformed signed payload")

	// ErrVerification is returned when a payload signature does not verify
	// against the repository public key.
	ErrVerification = errors.New("registry: signature verification failed")

	// ErrBadKey is returned when a key cannot be parsed or is not RSA.
	ErrBadKey = errors.New("registry: invalid key")
)

// VerifyPayload decodes a signed blob, verifies the RSA-SHA512 signature
// over the payload with the repository public key, and returns the payload.
func VerifyPayload(signed []byte, key *rsa.PublicKey) ([]byte, error) {
	var msg hexpb.Signed
	if err := msg.Unmarshal(signed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSigned, err)
	}
	sum := sha512.Sum512(msg.Payload)
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA512, sum[:], msg.Signature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return msg.Payload, nil
}

// ExtractPayload decodes a signed blob without checking the signature.
// Development and test use only; production callers go through
// VerifyPayload.
func ExtractPayload(signed []byte) ([]byte, error) {
	var msg hexpb.Signed
	if err := msg.Unmarshal(signed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSigned, err)
	}
	return msg.Payload, nil
}

// SignPayload wraps payload in a signed blob, producing the envelope a
// repository serves. Used by private-repository tooling and test fixtures.
func SignPayload(payload []byte, key *rsa.PrivateKey) ([]byte, error) {
	sum := sha512.Sum512(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA512, sum[:])
	if err != nil {
		return nil, fmt.Errorf("registry: sign payload: %w", err)
	}
	msg := hexpb.Signed{Payload: payload, Signature: sig}
	return msg.Marshal(), nil
}

// ParsePublicKey parses a PEM-encoded RSA public key in PKIX or PKCS#1
// form.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrBadKey)
	}
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA key", ErrBadKey)
		}
		return pub, nil
	}
	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	return pub, nil
}

// ParsePrivateKey parses a PEM-encoded RSA private key in PKCS#1 or PKCS#8
// form.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrBadKey)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrBadKey)
	}
	return priv, nil
}
