// Package token encodes and decodes the signed access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type distinguishes access tokens from refresh tokens.
type Type string

const (
	Access  Type = "access"
	Refresh Type = "refresh"
)

var (
	// ErrInvalidToken covers bad signatures, malformed input and expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenType means the token decoded but carries the other type.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is what a token carries.
type Claims struct {
	Subject   uint64 // user id
	JTI       string
	Type      Type
	ExpiresAt time.Time
}

type jwtClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a shared HMAC secret.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewCodec builds a codec for one of HS256, HS384 or HS512.
func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: empty secret")
	}
	var m jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "HS256":
		m = jwt.SigningMethodHS256
	case "HS384":
		m = jwt.SigningMethodHS384
	case "HS512":
		m = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("token: unsupported algorithm %q", algorithm)
	}
	return &Codec{secret: []byte(secret), method: m, now: time.Now}, nil
}

// Encode signs c.  ExpiresAt is truncated to whole seconds by the format.
func (c *Codec) Encode(cl Claims) (string, error) {
	t := jwt.NewWithClaims(c.method, jwtClaims{
		Type: string(cl.Type),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(cl.Subject, 10),
			ID:        cl.JTI,
			ExpiresAt: jwt.NewNumericDate(cl.ExpiresAt),
		},
	})
	return t.SignedString(c.secret)
}

// Decode verifies signature and expiry and checks the type claim.
func (c *Codec) Decode(raw string, want Type) (Claims, error) {
	var jc jwtClaims
	_, err := jwt.ParseWithClaims(raw, &jc,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	sub, err := strconv.ParseUint(jc.Subject, 10, 64)
	if err != nil || jc.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	if Type(jc.Type) != want {
		return Claims{}, ErrWrongTokenType
	}
	return Claims{
		Subject:   sub,
		JTI:       jc.ID,
		Type:      Type(jc.Type),
		ExpiresAt: jc.ExpiresAt.Time,
	}, nil
}
