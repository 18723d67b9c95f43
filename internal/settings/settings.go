// Package settings persists the two values the summarizer needs: the API key
// sent in the x-api-key header and the endpoint URL every request goes to.
package settings

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const (
	// KeyAPIKey is the storage key for the API key.
	KeyAPIKey = "apiKey"
	// KeyAPIURL is the storage key for the endpoint URL.
	KeyAPIURL = "apiUrl"

	// EnvAPIKey overrides the stored API key when set.
	EnvAPIKey = "ARXIVSUM_API_KEY"
	// EnvAPIURL overrides the stored endpoint when set.
	EnvAPIURL = "ARXIVSUM_API_URL"
)

// Settings is the persisted credential pair.
type Settings struct {
	APIKey string `yaml:"apiKey" json:"apiKey"`
	APIURL string `yaml:"apiUrl" json:"apiUrl"`
}

// Complete reports whether both values are present.
func (s Settings) Complete() bool {
	return s.APIKey != "" && s.APIURL != ""
}

// Store reads and writes Settings. Missing values read back as empty strings.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
)

// Open returns the store for the named backend, wrapped so that environment
// variables take precedence over stored values.
func Open(backend string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendKeyring:
		return EnvStore{Store: NewKeyringStore()}, nil
	case BackendFile:
		path, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		return EnvStore{Store: NewFileStore(path)}, nil
	default:
		return nil, fmt.Errorf("unsupported settings store %q (supported: keyring, file)", backend)
	}
}

// EnvStore overlays ARXIVSUM_API_KEY and ARXIVSUM_API_URL on top of another store.
type EnvStore struct {
	Store Store
}

func (e EnvStore) Load(ctx context.Context) (Settings, error) {
	s, err := e.Store.Load(ctx)
	if err != nil {
		return Settings{}, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		s.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		s.APIURL = v
	}
	return s, nil
}

func (e EnvStore) Save(ctx context.Context, s Settings) error {
	return e.Store.Save(ctx, s)
}
