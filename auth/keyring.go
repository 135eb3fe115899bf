// Package auth stores the backend API token in the system keyring.
package auth

import (
	"errors"

	"github.com/reelgate/reelgate/constant"
	"github.com/zalando/go-keyring"
)

const user = "api-token"

// SetToken persists the API token.
func SetToken(token string) error {
	return keyring.Set(constant.App, user, token)
}

// GetToken returns the stored API token, or an empty string when none is stored.
func GetToken() (string, error) {
	token, err := keyring.Get(constant.App, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// DeleteToken removes the stored API token. Removing a missing token is not an error.
func DeleteToken() error {
	err := keyring.Delete(constant.App, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
