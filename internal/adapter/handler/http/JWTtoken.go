package http

import (
	"errors"
	"time"

	"patient-record-service/internal/core/domain"
	"patient-record-service/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService issues and verifies bearer tokens. It is wired from config
// but no route currently enforces authentication.
type JWTTokenService struct {
	secretKey  []byte
	expiration time.Duration
	logger     ports.LoggerPort
}

func NewJWTTokenService(secretKey string, durationStr string, logger ports.LoggerPort) *JWTTokenService {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Error("Invalid token duration, using default 24h", map[string]interface{}{
			"duration": durationStr,
			"error":    err.Error(),
		})
		duration = 24 * time.Hour
	}

	return &JWTTokenService{
		secretKey:  []byte(secretKey),
		expiration: duration,
		logger:     logger,
	}
}

func (j *JWTTokenService) CreateToken(subjectID uuid.UUID) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		j.logger.Error("Failed to generate uuid", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreateToken",
		})
		return "", err
	}

	issuedAt := time.Now()
	expiredAt := issuedAt.Add(j.expiration)

	claims := jwt.MapClaims{
		"id":  id.String(),
		"sub": subjectID.String(),
		"iat": issuedAt.Unix(),
		"exp": expiredAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTTokenService) VerifyToken(token string) (domain.TokenPayload, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	})
	if err != nil {
		j.logger.Error("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "VerifyToken",
		})
		return domain.TokenPayload{}, err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return domain.TokenPayload{}, errors.New("failed to read token claims")
	}

	idStr, ok := claims["id"].(string)
	if !ok {
		return domain.TokenPayload{}, errors.New("invalid id claim")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return domain.TokenPayload{}, errors.New("invalid id claim")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return domain.TokenPayload{}, errors.New("invalid sub claim")
	}
	subjectID, err := uuid.Parse(subStr)
	if err != nil {
		return domain.TokenPayload{}, errors.New("invalid sub claim")
	}

	return domain.TokenPayload{
		ID:        id,
		SubjectID: subjectID,
	}, nil
}

var _ ports.TokenService = (*JWTTokenService)(nil)
