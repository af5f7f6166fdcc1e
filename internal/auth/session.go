package auth

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/swiftlogistics/swifttrack/internal/credential"
	"github.com/swiftlogistics/swifttrack/internal/model"
)

// SaveSession persists the authenticated user's token and identity in
// the system keyring so the next launch can skip the login screen.
func SaveSession(user *model.User) error {
	if err := credential.Set(credential.KeySessionToken, user.Token); err != nil {
		return err
	}
	if err := credential.Set(credential.KeyUserID, user.ID); err != nil {
		return err
	}
	return credential.Set(credential.KeyUserName, user.Name)
}

// LoadSession restores a previously saved session from the keyring.
// It returns an error when no session is stored.
func LoadSession() (*model.User, error) {
	token, err := credential.Get(credential.KeySessionToken)
	if err != nil {
		return nil, fmt.Errorf("no saved session: %w", err)
	}

	user := &model.User{Token: token}
	if id, err := credential.Get(credential.KeyUserID); err == nil {
		user.ID = id
	}
	if name, err := credential.Get(credential.KeyUserName); err == nil {
		user.Name = name
	}

	return user, nil
}

// ClearSession removes any saved session from the keyring. Missing
// entries are not an error.
func ClearSession() error {
	var firstErr error
	for _, key := range []string{
		credential.KeySessionToken,
		credential.KeyUserID,
		credential.KeyUserName,
	} {
		err := credential.Delete(key)
		if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
