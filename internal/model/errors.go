package model

import (
	"errors"
	"fmt"
)

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrEmailTaken        = fmt.Errorf("email already registered: %w", ErrUserAlreadyExists)
	ErrUsernameTaken     = fmt.Errorf("username already taken: %w", ErrUserAlreadyExists)

	// Authentication related errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUnauthenticated    = errors.New("unauthenticated")
	// Reported as a validation failure on change-password, not as a 401.
	ErrIncorrectPassword = fmt.Errorf("current password is incorrect: %w", ErrInvalidCredentials)

	// Permission/Access related errors
	ErrForbidden = errors.New("forbidden")

	// LLM related errors
	ErrProviderNotConfigured = errors.New("llm provider is not configured")
	ErrUnknownProvider       = errors.New("unknown llm provider")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
