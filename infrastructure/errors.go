package infrastructure

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotVerified       = errors.New("email not verified")

	ErrReportNotFound  = errors.New("report not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrFileTooLarge    = errors.New("file exceeds the upload limit")

	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid access token")
	ErrInvalidCode  = errors.New("invalid or expired code")
)
