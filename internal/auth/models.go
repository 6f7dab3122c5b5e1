package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  []byte
	CreatedAt time.Time
}

// FullName falls back to the username when no name parts are set.
func (user *User) FullName() string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}
	return name
}

func (user *User) String() string {
	return user.Username
}

type UserClaim struct {
	Username string `json:"username"`

	jwt.RegisteredClaims
}
