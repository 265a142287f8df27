package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when a store has no entry for a service and user.
var ErrNotFound = errors.New("secret not found")

// Store reads and writes secrets by service and user.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
	Delete(service, user string) error
}

// SystemStore is the operating system keyring.
type SystemStore struct{}

func (SystemStore) Get(service, user string) (string, error) {
	s, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, user)
	}
	return s, err
}

func (SystemStore) Set(service, user, secret string) error {
	return keyring.Set(service, user, secret)
}

func (SystemStore) Delete(service, user string) error {
	err := keyring.Delete(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// FileStore keeps AES-GCM encrypted entries in a JSON file for headless hosts.
type FileStore struct {
	path      string
	masterKey []byte
}

type fileEntry struct {
	Service string `json:"service"`
	User    string `json:"user"`
	Data    string `json:"data"`
}

// NewFileStore returns a file store at path keyed by masterPassword.
func NewFileStore(path, masterPassword string) *FileStore {
	hash := sha256.Sum256([]byte(masterPassword))
	return &FileStore{path: path, masterKey: hash[:]}
}

func entryKey(service, user string) string {
	return service + ":" + user
}

func (fs *FileStore) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := gojson.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse secret file: %w", err)
	}
	return entries, nil
}

func (fs *FileStore) save(entries map[string]fileEntry) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("failed to create secret directory: %w", err)
	}
	data, err := gojson.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0o600)
}

func (fs *FileStore) Get(service, user string) (string, error) {
	entries, err := fs.load()
	if err != nil {
		return "", err
	}
	entry, ok := entries[entryKey(service, user)]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, user)
	}
	return fs.decrypt(entry.Data)
}

func (fs *FileStore) Set(service, user, secret string) error {
	entries, err := fs.load()
	if err != nil {
		return err
	}
	data, err := fs.encrypt(secret)
	if err != nil {
		return err
	}
	entries[entryKey(service, user)] = fileEntry{Service: service, User: user, Data: data}
	return fs.save(entries)
}

func (fs *FileStore) Delete(service, user string) error {
	entries, err := fs.load()
	if err != nil {
		return err
	}
	if _, ok := entries[entryKey(service, user)]; !ok {
		return nil
	}
	delete(entries, entryKey(service, user))
	return fs.save(entries)
}

func (fs *FileStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(fs.masterKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (fs *FileStore) encrypt(plaintext string) (string, error) {
	gcm, err := fs.gcm()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil)), nil
}

func (fs *FileStore) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	gcm, err := fs.gcm()
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	plaintext, err := gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return string(plaintext), nil
}

// keyringCheckTimeout bounds the system keyring availability check.
const keyringCheckTimeout = 5 * time.Second

// NewStore returns the system keyring when it answers a test write in time,
// and a FileStore at path otherwise.
func NewStore(path, masterPassword string) Store {
	done := make(chan error, 1)
	go func() {
		err := keyring.Set("redb-connect-check", "check", "check")
		if err == nil {
			_ = keyring.Delete("redb-connect-check", "check")
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			return SystemStore{}
		}
	case <-time.After(keyringCheckTimeout):
	}
	return NewFileStore(path, masterPassword)
}

// DefaultPath returns the file store location, honoring REDB_CONNECT_KEYRING_PATH.
func DefaultPath() string {
	if path := os.Getenv("REDB_CONNECT_KEYRING_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "redb-connect-keyring.json")
	}
	return filepath.Join(home, ".local", "share", "redb-connect", "keyring.json")
}

// MasterPasswordFromEnv returns REDB_CONNECT_KEYRING_PASSWORD.
func MasterPasswordFromEnv() string {
	return os.Getenv("REDB_CONNECT_KEYRING_PASSWORD")
}

type lazyStore struct {
	once  sync.Once
	build func() Store
	store Store
}

// Lazy defers building a store until it is first used.
func Lazy(build func() Store) Store {
	return &lazyStore{build: build}
}

func (l *lazyStore) get() Store {
	l.once.Do(func() { l.store = l.build() })
	return l.store
}

func (l *lazyStore) Get(service, user string) (string, error) { return l.get().Get(service, user) }
func (l *lazyStore) Set(service, user, secret string) error   { return l.get().Set(service, user, secret) }
func (l *lazyStore) Delete(service, user string) error        { return l.get().Delete(service, user) }
