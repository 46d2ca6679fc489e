package models

// AES-GCM parameters for optional column encryption.
const (
	NonceSize  = 12
	KeySize    = 32
	Iterations = 100000
)
