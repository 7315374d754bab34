package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// TokenManager выпускает и проверяет HS256-токены.
// Секрет передаётся явно, а не берётся из окружения внутри.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// NewToken генерирует токен для пользователя: sub — id, role — роль
func (m *TokenManager) NewToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"role":  string(user.Role),
		"email": user.Email,
		"exp":   now.Add(m.ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify разбирает и проверяет токен. Любая причина невалидности,
// включая истёкший срок, отдаётся как Unauthorized.
func (m *TokenManager) Verify(tokenStr string) (*models.AuthContext, error) {
	if tokenStr == "" {
		return nil, httperr.Unauthorized("missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Проверка алгоритма
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, httperr.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, httperr.Unauthorized("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, httperr.Unauthorized("invalid token claims: sub not found")
	}
	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return nil, httperr.Unauthorized("invalid token claims: role not found")
	}

	return &models.AuthContext{UserID: sub, Role: models.Role(roleStr)}, nil
}
