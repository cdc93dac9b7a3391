package models

import (
	"time"
)

// Access token issued by TokenManager
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Result of successful register or login
type Session struct {
	User  User
	Token IssuedToken
}
