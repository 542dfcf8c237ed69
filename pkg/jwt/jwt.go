package jwt

import (
	"errors"
	"time"

	"go-medical-booking/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken       TokenType = "access"
	RefreshToken      TokenType = "refresh"
	ConfirmationToken TokenType = "confirmation"
)

type Claims struct {
	IdentityID uuid.UUID `json:"identity_id"`
	Email      string    `json:"email"`
	TokenType  TokenType `json:"token_type"`
	TokenID    string    `json:"token_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	config config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateTokenPair issues an access and a refresh token sharing one session ID.
// The session ID is the revocation handle for both tokens.
func (s *JWTService) GenerateTokenPair(identityID uuid.UUID, email string) (string, string, string, error) {
	sessionID := uuid.New().String()

	accessToken, err := s.generate(identityID, email, AccessToken, sessionID, s.config.AccessExpiry)
	if err != nil {
		return "", "", "", err
	}

	refreshToken, err := s.generate(identityID, email, RefreshToken, sessionID, s.config.RefreshExpiry)
	if err != nil {
		return "", "", "", err
	}

	return accessToken, refreshToken, sessionID, nil
}

// GenerateConfirmationToken issues the single-purpose token sent in the verification email
func (s *JWTService) GenerateConfirmationToken(identityID uuid.UUID, email string) (string, error) {
	return s.generate(identityID, email, ConfirmationToken, uuid.New().String(), s.config.ConfirmationExpiry)
}

func (s *JWTService) generate(identityID uuid.UUID, email string, tokenType TokenType, tokenID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		IdentityID: identityID,
		Email:      email,
		TokenType:  tokenType,
		TokenID:    tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (s *JWTService) GetAccessExpiry() time.Duration {
	return s.config.AccessExpiry
}

func (s *JWTService) GetRefreshExpiry() time.Duration {
	return s.config.RefreshExpiry
}
