package service

import (
	"errors"
	"time"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/pkg/jwt"
)

var ErrInvalidIdentity = errors.New("user id and email are required")

// AuthService issues and checks session tokens. Sign-in itself happens at
// the OAuth provider; a token is minted from the identity it returns.
type AuthService interface {
	IssueToken(user model.User, providerToken string) (*TokenResponse, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
}

type TokenResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type TokenValidationResponse struct {
	User      model.User `json:"user"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

type authService struct {
	tokens *jwt.Manager
}

func NewAuthService(tokens *jwt.Manager) AuthService {
	return &authService{tokens: tokens}
}

func (s *authService) IssueToken(user model.User, providerToken string) (*TokenResponse, error) {
	if user.ID == "" || user.Email == "" {
		return nil, ErrInvalidIdentity
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, user.Avatar, providerToken)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &TokenResponse{Token: token, User: user}, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	resp := &TokenValidationResponse{
		User: model.User{
			ID:     claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
			Avatar: claims.Avatar,
		},
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp, nil
}
