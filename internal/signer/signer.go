// Package signer produces detached OpenPGP signatures for built packages.
package signer

const (
	// SignatureSuffix is appended to a file name to name its detached signature
	SignatureSuffix = ".asc"

	// PublicKeySuffix is appended to a package name to name the exported
	// public key that verifies its signature
	PublicKeySuffix = ".pub.asc"
)

// Signer signs files
type Signer interface {
	// SignFile writes the detached signature of path next to it and returns
	// the signature path
	SignFile(path string) (string, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
