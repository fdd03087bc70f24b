// Package store persists auth profiles and recorded action sequences as
// JSON files under a directory tree on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cookie mirrors the subset of cookie fields a driver can set/get.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"http_only"`
}

// AuthProfile is a named cookie bundle, optionally scoped to a domain.
type AuthProfile struct {
	Name    string    `json:"name"`
	Domain  string    `json:"domain,omitempty"`
	Cookies []Cookie  `json:"cookies"`
	SavedAt time.Time `json:"saved_at"`
}

// AuthStore persists one JSON file per profile under dir/auth/<domain>/, or
// directly under dir/auth/ when no domain is known at save time.
type AuthStore struct {
	dir string
}

// NewAuthStore binds a store rooted at dir (created on first write).
func NewAuthStore(dir string) *AuthStore {
	return &AuthStore{dir: filepath.Join(dir, "auth")}
}

func (s *AuthStore) filename(name string) string {
	return sanitize(name) + ".json"
}

// Save writes a profile to disk, overwriting any existing one with the same
// (name, domain) key. A profile saved with a domain lives under a
// domain-named subdirectory; one saved without goes directly in the base dir.
func (s *AuthStore) Save(p AuthProfile) error {
	dir := s.dir
	if p.Domain != "" {
		dir = filepath.Join(s.dir, sanitize(p.Domain))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating auth store dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling auth profile: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, s.filename(p.Name)), data, 0o600)
}

// Load reads a profile by name. When domain is given, it is looked up
// directly under that domain's subdirectory. When domain is empty, Load
// first checks the base directory, then scans every domain subdirectory for
// a matching profile - a profile saved with a domain is still found by name
// alone.
func (s *AuthStore) Load(name, domain string) (AuthProfile, error) {
	var p AuthProfile
	if domain != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, sanitize(domain), s.filename(name)))
		if err != nil {
			return p, fmt.Errorf("auth profile %q not found in domain %q", name, domain)
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parsing auth profile %s: %w", name, err)
		}
		return p, nil
	}

	if data, err := os.ReadFile(filepath.Join(s.dir, s.filename(name))); err == nil {
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parsing auth profile %s: %w", name, err)
		}
		return p, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return p, fmt.Errorf("auth profile %q not found", name)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name(), s.filename(name)))
		if err != nil {
			continue
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parsing auth profile %s: %w", name, err)
		}
		return p, nil
	}
	return p, fmt.Errorf("auth profile %q not found", name)
}

// List enumerates every saved profile's filename stem across the base
// directory and all domain subdirectories.
func (s *AuthStore) List() ([]string, error) {
	var names []string
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			if strings.HasSuffix(e.Name(), ".json") {
				names = append(names, strings.TrimSuffix(e.Name(), ".json"))
			}
			continue
		}
		sub, err := os.ReadDir(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		for _, se := range sub {
			if !se.IsDir() && strings.HasSuffix(se.Name(), ".json") {
				names = append(names, strings.TrimSuffix(se.Name(), ".json"))
			}
		}
	}
	return names, nil
}

// Delete removes a saved profile; a missing profile is not an error. Domain
// lookup follows the same rules as Load.
func (s *AuthStore) Delete(name, domain string) error {
	if domain != "" {
		err := os.Remove(filepath.Join(s.dir, sanitize(domain), s.filename(name)))
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, s.filename(name))); err == nil {
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, e.Name(), s.filename(name))
		if err := os.Remove(path); err == nil {
			return nil
		}
	}
	return nil
}

func sanitize(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
	// A name made only of dots ("." or "..") would point outside the store.
	if strings.Trim(out, ".") == "" {
		return strings.Repeat("_", len(out))
	}
	return out
}
