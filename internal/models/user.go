package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
}

// Identity is what a verified access token says about its bearer
type Identity struct {
	UserID   uuid.UUID
	Username string
}
