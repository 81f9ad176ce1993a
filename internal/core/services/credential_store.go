package services

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// UsersEnvKey holds the local user table: {"alice":"$2a$12$..."}.
const UsersEnvKey = "APP_USERS"

// EnvCredentialStore reads the user table from the environment on every
// lookup, so edits take effect without a restart.
type EnvCredentialStore struct {
	lookup func(string) string
	log    *logrus.Logger
}

// NewEnvCredentialStore reads APP_USERS from the process environment
func NewEnvCredentialStore(log *logrus.Logger) *EnvCredentialStore {
	return NewCredentialStoreFunc(os.Getenv, log)
}

// NewCredentialStoreFunc reads APP_USERS through lookup
func NewCredentialStoreFunc(lookup func(string) string, log *logrus.Logger) *EnvCredentialStore {
	return &EnvCredentialStore{lookup: lookup, log: log}
}

// LookupHash returns the stored hash for username. A missing or malformed
// table behaves as an empty one.
func (s *EnvCredentialStore) LookupHash(username string) (string, bool) {
	raw := strings.TrimSpace(s.lookup(UsersEnvKey))
	if raw == "" {
		return "", false
	}

	var users map[string]any
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.log.WithError(err).Warn("APP_USERS is not a JSON object; no local users available")
		return "", false
	}

	hash, ok := users[username].(string)
	if !ok || hash == "" {
		return "", false
	}
	return hash, true
}
