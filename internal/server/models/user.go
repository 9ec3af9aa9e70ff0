// Package models defines the server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
