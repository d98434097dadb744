package authsvc

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
)

// VerifySessionToken validates a session token by:
// - Decoding the base64url-encoded token
// - Verifying the RSA-PSS signature using SHA256
// - Parsing the JSON payload into a Session
// - Checking if the session has expired
// Returns the parsed Session if valid.
// Returns domain.ErrInvalidSession for any validation failure.
func VerifySessionToken(tokenString string, publicKey *rsa.PublicKey) (domain.Session, error) {
	tokenData, err := base64.URLEncoding.DecodeString(tokenString)
	if err != nil {
		return domain.Session{}, errors.Join(domain.ErrInvalidSession, fmt.Errorf("decode token: %w", err))
	}

	signatureStart := len(tokenData) - publicKey.Size()
	if signatureStart <= 0 {
		return domain.Session{}, domain.ErrInvalidSession
	}

	payload := tokenData[:signatureStart]
	signature := tokenData[signatureStart:]

	hashed := sha256.Sum256(payload)
	if err := rsa.VerifyPSS(publicKey, crypto.SHA256, hashed[:], signature, nil); err != nil {
		return domain.Session{}, domain.ErrInvalidSession
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.Session{}, errors.Join(domain.ErrInvalidSession, fmt.Errorf("unmarshal session: %w", err))
	}

	if session.ExpiresAt < time.Now().Unix() {
		return domain.Session{}, domain.ErrInvalidSession
	}

	return session, nil
}
