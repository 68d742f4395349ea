// credentials.go owns the API key lifecycle. The key lives in the OS keyring
// (Linux: Secret Service/GNOME Keyring, macOS: Keychain, Windows: Credential
// Manager) and is migrated there from the legacy plaintext file older
// releases wrote under the user config directory. The key is never logged.
package gemini

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "medclaw"

	// keyringSecretName is the entry name for the Gemini API key.
	keyringSecretName = "gemini_api_key"

	// legacyKeyFile is the plaintext file older releases stored the key in,
	// relative to the user config directory.
	legacyKeyFile = "medclaw/api_key"
)

// ErrSecretNotFound is returned by a SecretBackend when no value is stored.
var ErrSecretNotFound = errors.New("secret not found")

// ErrNotConfigured is returned when an operation needs an API key and none
// has been set.
var ErrNotConfigured = errors.New("gemini: API key not configured (run 'medclaw config set-key')")

// SecretBackend stores a single named secret. Implementations: the OS
// keyring (primary) and the legacy plaintext file (migration source only).
type SecretBackend interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
}

// KeyringBackend stores secrets in the OS keyring via zalando/go-keyring.
type KeyringBackend struct {
	Service string
}

func (b *KeyringBackend) Get(name string) (string, error) {
	val, err := keyring.Get(b.Service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (b *KeyringBackend) Set(name, value string) error {
	return keyring.Set(b.Service, name, value)
}

func (b *KeyringBackend) Delete(name string) error {
	err := keyring.Delete(b.Service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// FileBackend stores a secret as a plaintext file. Kept only so existing
// installs can be migrated off it; new writes always go to the keyring.
type FileBackend struct {
	Path string
}

func (b *FileBackend) Get(string) (string, error) {
	data, err := os.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", err
	}
	val := strings.TrimSpace(string(data))
	if val == "" {
		return "", ErrSecretNotFound
	}
	return val, nil
}

func (b *FileBackend) Set(_, value string) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(b.Path, []byte(value), 0o600)
}

func (b *FileBackend) Delete(string) error {
	err := os.Remove(b.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// CredentialStore holds the single active API key for a process. At most one
// value is live at a time; mutation goes through SetKey/ClearKey only.
type CredentialStore struct {
	primary SecretBackend
	legacy  SecretBackend
	logger  *slog.Logger

	mu  sync.RWMutex
	key string
}

// NewCredentialStore builds a store over the OS keyring with the default
// legacy file location. Call Initialize once at process start.
func NewCredentialStore(logger *slog.Logger) *CredentialStore {
	legacyPath := legacyKeyFile
	if dir, err := os.UserConfigDir(); err == nil {
		legacyPath = filepath.Join(dir, legacyKeyFile)
	}
	return NewCredentialStoreWithBackends(
		&KeyringBackend{Service: keyringService},
		&FileBackend{Path: legacyPath},
		logger,
	)
}

// NewCredentialStoreWithBackends builds a store over explicit backends.
// Used by tests and by callers with non-standard storage.
func NewCredentialStoreWithBackends(primary, legacy SecretBackend, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		primary: primary,
		legacy:  legacy,
		logger:  logger.With("component", "credentials"),
	}
}

// Initialize loads the key from the primary backend, falling back to the
// legacy backend. A key found only in the legacy store is migrated into the
// primary store and the legacy copy is deleted. Storage failures never fail
// initialization; they are logged and leave the store unconfigured.
func (s *CredentialStore) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if val, err := s.primary.Get(keyringSecretName); err == nil {
		s.key = val
		s.logger.Debug("API key loaded from OS keyring")
		return
	} else if !errors.Is(err, ErrSecretNotFound) {
		s.logger.Warn("reading key from keyring failed", "error", err)
	}

	val, err := s.legacy.Get(keyringSecretName)
	if errors.Is(err, ErrSecretNotFound) {
		s.logger.Debug("no API key found, store unconfigured")
		return
	}
	if err != nil {
		s.logger.Warn("reading legacy key file failed", "error", err)
		return
	}

	// Migrate: keyring becomes the single source of truth.
	if err := s.primary.Set(keyringSecretName, val); err != nil {
		s.logger.Warn("migrating key to OS keyring failed, store left unconfigured", "error", err)
		return
	}
	if err := s.legacy.Delete(keyringSecretName); err != nil {
		// The key is already safe in the keyring; a stale legacy copy is
		// only a cleanup problem.
		s.logger.Warn("removing legacy key file failed", "error", err)
	}
	s.key = val
	s.logger.Info("API key migrated from legacy file to OS keyring")
}

// SetKey stores a new API key in the primary backend and removes any legacy
// copy so the keyring is the single source of truth going forward.
func (s *CredentialStore) SetKey(secret string) error {
	if secret == "" {
		return fmt.Errorf("credentials: refusing to store empty key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.primary.Set(keyringSecretName, secret); err != nil {
		return fmt.Errorf("storing key in keyring: %w", err)
	}
	if err := s.legacy.Delete(keyringSecretName); err != nil {
		s.logger.Warn("removing legacy key file failed", "error", err)
	}
	s.key = secret
	s.logger.Info("API key stored in OS keyring", "service", keyringService)
	return nil
}

// ClearKey removes the key from both backends and resets in-memory state.
func (s *CredentialStore) ClearKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if err := s.primary.Delete(keyringSecretName); err != nil {
		firstErr = fmt.Errorf("removing key from keyring: %w", err)
	}
	if err := s.legacy.Delete(keyringSecretName); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("removing legacy key file: %w", err)
	}
	s.key = ""
	return firstErr
}

// IsConfigured reports whether an API key is currently set.
func (s *CredentialStore) IsConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != ""
}

// Key returns the active API key, or ErrNotConfigured when none is set.
func (s *CredentialStore) Key() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == "" {
		return "", ErrNotConfigured
	}
	return s.key, nil
}
