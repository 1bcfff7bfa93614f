package postgres

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	scramIterations = 4096
	scramSaltLength = 16
)

// scramVerifier computes the SCRAM-SHA-256 verifier PostgreSQL stores in
// pg_authid, so the plain password never reaches the server.
func scramVerifier(password string, random io.Reader) (string, error) {
	salt := make([]byte, scramSaltLength)
	if _, err := io.ReadFull(random, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return scramVerifierWithSalt(password, salt, scramIterations), nil
}

func scramVerifierWithSalt(password string, salt []byte, iterations int) string {
	salted := pbkdf2.Key([]byte(password), salt, iterations, sha256.Size, sha256.New)
	clientKey := hmacSHA256(salted, "Client Key")
	storedKey := sha256.Sum256(clientKey)
	serverKey := hmacSHA256(salted, "Server Key")

	enc := base64.StdEncoding
	return fmt.Sprintf("SCRAM-SHA-256$%d:%s$%s:%s",
		iterations,
		enc.EncodeToString(salt),
		enc.EncodeToString(storedKey[:]),
		enc.EncodeToString(serverKey))
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}

var randReader io.Reader = rand.Reader
