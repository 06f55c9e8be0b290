package ports

import (
	"patient-record-service/internal/core/domain"

	"github.com/google/uuid"
)

type TokenService interface {
	CreateToken(subjectID uuid.UUID) (string, error)
	VerifyToken(token string) (domain.TokenPayload, error)
}
