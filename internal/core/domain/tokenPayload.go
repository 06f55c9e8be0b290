package domain

import "github.com/google/uuid"

// TokenPayload is the verified content of a bearer token. No route currently
// enforces authentication; it exists for the wired-but-inert token service.
type TokenPayload struct {
	ID        uuid.UUID
	SubjectID uuid.UUID
}
