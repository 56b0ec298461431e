package transporttest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"

	"github.com/klauspost/compress/gzip"

	"github.com/hexreg/hexreg/registry"
)

// GenerateKey returns a fresh RSA keypair for fixtures. It panics on
// failure, which in a fixture means the test environment is broken.
func GenerateKey() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic("transporttest: generate key: " + err.Error())
	}
	return key
}

// SignedBody wraps payload in a signed envelope and gzips it, producing
// the body a repository serves for a signed index resource.
func SignedBody(payload []byte, key *rsa.PrivateKey) []byte {
	signed, err := registry.SignPayload(payload, key)
	if err != nil {
		panic("transporttest: sign payload: " + err.Error())
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(signed); err != nil {
		panic("transporttest: gzip payload: " + err.Error())
	}
	if err := zw.Close(); err != nil {
		panic("transporttest: gzip payload: " + err.Error())
	}
	return buf.Bytes()
}
