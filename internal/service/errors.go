package service

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user already exists")
	ErrNoMembership        = errors.New("no organization membership found")
	ErrNotMember           = errors.New("not a member of this organization")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrInvalidCursor       = errors.New("invalid cursor")
)
