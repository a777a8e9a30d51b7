package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Digest identifies a built artifact in logs
type Digest struct {
	SHA256 string
	Size   int64
}

// FileDigest hashes the file at path
func FileDigest(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Digest{}, err
	}
	return Digest{SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}
