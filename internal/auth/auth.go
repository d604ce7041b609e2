// Package auth resolves agent keys to user identities.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	internalerrors "github.com/banbrick/collector/internal/errors"
	models "github.com/banbrick/collector/internal/model"
)

// Authenticator resolves an opaque key to a user identity. The ingestion
// flow only consumes its two outcomes: a user or a failure.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (models.User, error)
}

// KeyFile authenticates against a set of sha256 key digests, so plaintext
// keys never live in configuration.
type KeyFile struct {
	users map[string]models.User
}

type keyEntry struct {
	// KeyDigest is the hex sha256 of the agent key
	KeyDigest string `json:"key_digest"`

	// User is the identity the key resolves to
	User string `json:"user"`

	// Groups scope which projects the user may submit values for
	Groups []string `json:"groups"`
}

// NewKeyFile loads key entries from a JSON file.
//
// The file is an array of {"key_digest", "user", "groups"} objects.
func NewKeyFile(fname string) (*KeyFile, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("error reading key file: %w", err)
	}
	var entries []keyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error decoding key file: %w", err)
	}
	users := make(map[string]models.User, len(entries))
	for _, entry := range entries {
		users[entry.KeyDigest] = models.User{Name: entry.User, Groups: entry.Groups}
	}
	return &KeyFile{users: users}, nil
}

// NewStatic builds an authenticator from plaintext keys, mostly for tests
// and single-tenant setups.
func NewStatic(keys map[string]models.User) *KeyFile {
	users := make(map[string]models.User, len(keys))
	for key, user := range keys {
		users[Digest(key)] = user
	}
	return &KeyFile{users: users}
}

// Digest returns the hex sha256 of a key, the form stored in key files.
func Digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (a *KeyFile) Authenticate(ctx context.Context, key string) (models.User, error) {
	user, ok := a.users[Digest(key)]
	if !ok {
		return models.User{}, internalerrors.ErrAuthenticationFailed
	}
	return user, nil
}
