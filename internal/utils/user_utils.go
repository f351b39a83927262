package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrLegacyPassword = errors.New("password is not a sha256 hex digest")

// LegacyUser is one entry of the "users" key exported from the browser
// version of the form. Password holds a SHA-256 hex digest.
type LegacyUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func ParseLegacyUsers(contents string) ([]LegacyUser, error) {
	contents = strings.TrimSpace(contents)

	if contents == "" || contents == "null" {
		return []LegacyUser{}, nil
	}

	var users []LegacyUser

	err := json.Unmarshal([]byte(contents), &users)

	if err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	for i, user := range users {
		if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Email) == "" {
			return nil, fmt.Errorf("user %d: username and email are required", i)
		}
		if !IsDigest(user.Password) {
			return nil, fmt.Errorf("user %d: %w", i, ErrLegacyPassword)
		}
	}

	return users, nil
}

func GetLegacyUsers(file string) ([]LegacyUser, error) {
	contents, err := os.ReadFile(file)

	if err != nil {
		return nil, err
	}

	return ParseLegacyUsers(string(contents))
}
