package utils // package utils provides helper functions for session tokens and hashing

import (
    "crypto/sha256" // SHA‑256 hashing of session ids
    "encoding/hex"  // hex encoding of digests
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for signing the session cookie
)

// SessionToken is the signed cookie value for a session together with its
// expiry.  The session id inside it is opaque; only its SHA‑256 hash is
// ever stored server side.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// SessionClaims are the claims carried by the session cookie.
type SessionClaims struct {
    SessionID string `json:"sid"`
    jwt.RegisteredClaims
}

// ErrInvalidToken is returned for cookies that fail signature, expiry or
// shape checks.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT binding sessionID to userID.
// The subject (sub) is the user id, exp is now+ttl.
func NewSessionToken(secret string, userID uint64, sessionID string, ttl time.Duration) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := SessionClaims{
        SessionID: sessionID,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the cookie and returns the user id and session
// id it carries.
func ParseSessionToken(secret, raw string) (uint64, string, error) {
    var claims SessionClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return 0, "", ErrInvalidToken
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 || claims.SessionID == "" {
        return 0, "", ErrInvalidToken
    }
    return uid, claims.SessionID, nil
}

// HashToken returns the SHA‑256 hash of a session id as a hex string.
// Storing only the hash prevents a leaked sessions table from being
// replayed as cookies.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
