package repoargs

import "time"

type CreateUser struct {
	Email          string
	Name           string
	PasswordDigest string
	Birthdate      *time.Time
}
