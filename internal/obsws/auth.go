package obsws

import (
	"crypto/sha256"
	"encoding/base64"
)

// authString computes the Identify authentication string from the password
// and the challenge/salt pair sent in Hello.
func authString(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])

	auth := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(auth[:])
}
