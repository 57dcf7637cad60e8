package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"BookDesk/internal/model"
)

// ErrNoIdentity is returned by Load when no snapshot exists: the user is
// simply signed out.
var ErrNoIdentity = errors.New("no stored identity")

// ErrCorruptIdentity wraps a snapshot that exists but cannot be decoded.
var ErrCorruptIdentity = errors.New("corrupt identity snapshot")

// IdentityStore keeps the single durable record of who is signed in:
// one JSON file under the user's config directory (or an explicit path).
type IdentityStore struct {
	// Path overrides the default location when non-empty.
	Path string
}

func (s IdentityStore) path() (string, error) {
	if s.Path != "" {
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
			return "", err
		}
		return s.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "BookDesk")
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(p, "identity.json"), nil
}

// Save writes the identity snapshot.
func (s IdentityStore) Save(id *model.Identity) error {
	if id == nil {
		return errors.New("nil identity")
	}
	p, err := s.path()
	if err != nil {
		return err
	}
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Load reads the identity snapshot. A missing file means signed out
// (ErrNoIdentity); an unreadable record is reported as ErrCorruptIdentity so
// the caller can discard it.
func (s IdentityStore) Load() (*model.Identity, error) {
	p, err := s.path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoIdentity
		}
		return nil, err
	}
	var id model.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIdentity, err)
	}
	if id.Email == "" && id.SubjectID == "" {
		return nil, fmt.Errorf("%w: empty record", ErrCorruptIdentity)
	}
	return &id, nil
}

// Clear removes the snapshot. Removing an absent snapshot is not an error.
func (s IdentityStore) Clear() error {
	p, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
