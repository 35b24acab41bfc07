// Package token issues and validates the signed bearer credentials used by
// the API. Tokens are self-contained HS256 JWTs carrying the user email as
// subject plus a kind discriminator; nothing is persisted server-side.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindVerify  Kind = "verify"
)

// ErrInvalid is returned for every decode failure: malformed input, bad
// signature, expired token or kind mismatch. Callers must not distinguish
// between these cases.
var ErrInvalid = errors.New("invalid token")

type claims struct {
	Kind Kind `json:"kind"`
	jwtlib.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttls   map[Kind]time.Duration
	now    func() time.Time
}

func NewSigner(secret []byte, accessTTL, refreshTTL, verifyTTL time.Duration) *Signer {
	return &Signer{
		secret: secret,
		ttls: map[Kind]time.Duration{
			KindAccess:  accessTTL,
			KindRefresh: refreshTTL,
			KindVerify:  verifyTTL,
		},
		now: time.Now,
	}
}

func (s *Signer) Issue(subject string, kind Kind) (string, error) {
	ttl, ok := s.ttls[kind]
	if !ok {
		return "", ErrInvalid
	}
	now := s.now()
	c := claims{
		Kind: kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(s.secret)
}

// Decode verifies the signature and expiry and returns the embedded subject.
// The subject only proves attestation at issuance time; resolving it to a
// live user record is the caller's job.
func (s *Signer) Decode(tokenString string, kind Kind) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(tokenString, &claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if t.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, ErrInvalid
		}
		return s.secret, nil
	}, jwtlib.WithTimeFunc(s.now))
	if err != nil {
		return "", ErrInvalid
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Kind != kind || c.Subject == "" {
		return "", ErrInvalid
	}
	return c.Subject, nil
}
