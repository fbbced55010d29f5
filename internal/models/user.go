// Package models holds the persistent entities shared by repositories and
// services.
package models

import "time"

// User is a registered identity. PasswordHash is the Argon2id digest and
// must never appear in logs or responses.
type User struct {
	ID           string
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
	AvatarURL    string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
