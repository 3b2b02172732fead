package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// TokenUseCase issues and verifies viewer access tokens.
type TokenUseCase struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenUseCase(secret string, expiry time.Duration) *TokenUseCase {
	return &TokenUseCase{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// TokenResponse represents the authentication response
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int       `json:"user_id"`
}

func (uc *TokenUseCase) IssueToken(userID int) (*TokenResponse, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	expiresAt := now.Add(uc.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	})

	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		UserID:    userID,
	}, nil
}

// VerifyToken verifies JWT token and returns user ID
func (uc *TokenUseCase) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return uc.secret, nil
	}, jwt.WithTimeFunc(uc.now))

	if err != nil || !token.Valid {
		return 0, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, domain.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, domain.ErrInvalidToken
	}

	return int(userID), nil
}
