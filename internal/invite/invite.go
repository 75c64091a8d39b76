// Package invite issues and decodes business invitation tokens.
//
// A token is a JWT whose payload carries the invitee email, the business role
// they are offered, and the business. It is signed, so acceptance can trust
// the payload, and expires after TTL.
package invite

import (
	"errors"
	"time"

	"go-cashbook-ws/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired = errors.New("invitation has expired")
	ErrInvalid = errors.New("Invalid invitation link.")
	ErrNoKey   = errors.New("invitation signing secret is not configured")
)

// TTL is how long an invitation stays valid.
const TTL = 7 * 24 * time.Hour

type Payload struct {
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	BusinessID   string     `json:"businessId"`
	BusinessName string     `json:"businessName"`
	InvitedBy    string     `json:"invitedBy,omitempty"`
	Host         string     `json:"host,omitempty"` // user whose document holds the business
	Expires      int64      `json:"expires"`        // unix milliseconds
}

type claims struct {
	Payload
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of c that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs p with an expiry TTL from now and returns the token.
func (c *Codec) Issue(p Payload) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, ErrNoKey
	}
	now := c.now()
	expires := now.Add(TTL)
	p.Expires = expires.UnixMilli()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(c.secret)
	return signed, expires, err
}

// Decode verifies the token and returns its payload.
func (c *Codec) Decode(token string) (*Payload, error) {
	if len(c.secret) == 0 {
		return nil, ErrNoKey
	}
	var cl claims
	_, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, ErrInvalid
	}

	p := cl.Payload
	if p.Email == "" || p.BusinessID == "" || !p.Role.Valid() {
		return nil, ErrInvalid
	}
	if p.Expires < c.now().UnixMilli() {
		return nil, ErrExpired
	}
	return &p, nil
}
