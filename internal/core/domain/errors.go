package domain

import "errors"

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidBirthDate   = errors.New("birth date cannot be in the future")
	ErrImplausibleAge     = errors.New("computed age exceeds 150 years")
	ErrNameTooShort       = errors.New("name must be at least 2 characters")
	ErrAddressTooShort    = errors.New("address must be at least 10 characters")
	ErrNoFieldsToUpdate   = errors.New("at least one field must be provided")
	ErrInvalidPatientID   = errors.New("invalid patient ID format")
)
