package credentials

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/rentora/access-layer/internal/core/domain"
)

// ErrSealed is returned when a sealed credential cannot be opened with the
// configured key.
var ErrSealed = errors.New("credential sealed with a different key")

// FileStore persists one file per credential slot so that a slot survives
// process restarts. Each role's file is written and removed independently.
type FileStore struct {
	dir  string
	aead cipher.AEAD
	mu   sync.Mutex
}

type fileRecord struct {
	Token   string    `json:"token,omitempty"`
	Sealed  string    `json:"sealed,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// NewFileStore initializes a store under dir. When key is non-nil it must be
// 32 bytes; tokens are then sealed with XChaCha20-Poly1305 before hitting disk.
func NewFileStore(dir string, key []byte) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("credential dir: %w", err)
	}
	s := &FileStore{dir: dir}
	if key != nil {
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("credential key: %w", err)
		}
		s.aead = aead
	}
	return s, nil
}

// ParseKey decodes a hex-encoded 32-byte key. An empty string yields nil.
func ParseKey(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("credential key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("credential key: want %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

func (s *FileStore) path(role domain.Role) string {
	return filepath.Join(s.dir, domain.CredentialKey(role)+".json")
}

func (s *FileStore) Get(role domain.Role) (string, error) {
	content, err := os.ReadFile(s.path(role))
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(content, &rec); err != nil {
		return "", fmt.Errorf("decode credential: %w", err)
	}
	if rec.Sealed == "" {
		if rec.Token == "" {
			return "", domain.ErrNoCredential
		}
		return rec.Token, nil
	}
	return s.open(role, rec.Sealed)
}

// Set writes the role's file atomically: a temp file is renamed over the old
// one, so a crash leaves either the old or the new token, never a torn file.
func (s *FileStore) Set(role domain.Role, token string) error {
	rec := fileRecord{SavedAt: time.Now().UTC()}
	if s.aead != nil {
		sealed, err := s.seal(role, token)
		if err != nil {
			return err
		}
		rec.Sealed = sealed
	} else {
		rec.Token = token
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.path(role)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return os.Rename(tempPath, filePath)
}

func (s *FileStore) Clear(role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(role))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// The role key is bound as additional data so a sealed token cannot be
// replayed into another role's file.
func (s *FileStore) seal(role domain.Role, token string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal credential: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(token), []byte(domain.CredentialKey(role)))
	return hex.EncodeToString(out), nil
}

func (s *FileStore) open(role domain.Role, sealedHex string) (string, error) {
	if s.aead == nil {
		return "", ErrSealed
	}
	raw, err := hex.DecodeString(sealedHex)
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", ErrSealed
	}
	nonce, ct := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ct, []byte(domain.CredentialKey(role)))
	if err != nil {
		return "", ErrSealed
	}
	return string(plain), nil
}
