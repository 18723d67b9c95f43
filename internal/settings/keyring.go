package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name entries are stored under in the OS keychain.
const KeyringService = "arxivsum"

// KeyringStore keeps each setting as its own keychain entry.
type KeyringStore struct {
	service string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: KeyringService}
}

func (k *KeyringStore) Load(ctx context.Context) (Settings, error) {
	apiKey, err := k.get(KeyAPIKey)
	if err != nil {
		return Settings{}, err
	}
	apiURL, err := k.get(KeyAPIURL)
	if err != nil {
		return Settings{}, err
	}
	return Settings{APIKey: apiKey, APIURL: apiURL}, nil
}

func (k *KeyringStore) Save(ctx context.Context, s Settings) error {
	if err := k.set(KeyAPIKey, s.APIKey); err != nil {
		return err
	}
	return k.set(KeyAPIURL, s.APIURL)
}

func (k *KeyringStore) get(key string) (string, error) {
	v, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from keychain: %w", key, err)
	}
	return v, nil
}

// set removes the entry for an empty value so it reads back as absent.
func (k *KeyringStore) set(key, value string) error {
	if value == "" {
		err := keyring.Delete(k.service, key)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to clear %s in keychain: %w", key, err)
		}
		return nil
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to write %s to keychain: %w", key, err)
	}
	return nil
}
