package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAuthStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewAuthStore(dir)

	profile := AuthProfile{Name: "admin", Domain: "example.com", Cookies: []Cookie{{Name: "sid", Value: "abc"}}, SavedAt: time.Now()}
	if err := s.Save(profile); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load("admin", "example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Cookies) != 1 || loaded.Cookies[0].Value != "abc" {
		t.Fatalf("unexpected profile: %+v", loaded)
	}

	names, err := s.List()
	if err != nil || len(names) != 1 {
		t.Fatalf("list: %v %v", names, err)
	}

	if err := s.Delete("admin", "example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load("admin", "example.com"); err == nil {
		t.Fatal("expected error loading deleted profile")
	}
}

func TestAuthStoreDomainSubdirectoryLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewAuthStore(dir)

	profile := AuthProfile{Name: "admin", Domain: "example.com", Cookies: []Cookie{{Name: "sid", Value: "abc"}}, SavedAt: time.Now()}
	if err := s.Save(profile); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "auth", "example.com", "admin.json")); err != nil {
		t.Fatalf("expected a domain subdirectory layout, stat failed: %v", err)
	}
}

func TestAuthStoreLoadWithoutDomainFallsBackToScan(t *testing.T) {
	dir := t.TempDir()
	s := NewAuthStore(dir)

	profile := AuthProfile{Name: "admin", Domain: "example.com", Cookies: []Cookie{{Name: "sid", Value: "abc"}}, SavedAt: time.Now()}
	if err := s.Save(profile); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load("admin", "")
	if err != nil {
		t.Fatalf("expected the domain-omitted lookup to find a profile saved with a domain: %v", err)
	}
	if loaded.Domain != "example.com" {
		t.Errorf("expected domain example.com, got %q", loaded.Domain)
	}
}

func TestAuthStoreSaveWithoutDomainIsFlat(t *testing.T) {
	dir := t.TempDir()
	s := NewAuthStore(dir)

	profile := AuthProfile{Name: "default", Cookies: []Cookie{{Name: "sid", Value: "abc"}}, SavedAt: time.Now()}
	if err := s.Save(profile); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "auth", "default.json")); err != nil {
		t.Fatalf("expected a flat file when no domain is known: %v", err)
	}

	loaded, err := s.Load("default", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Cookies) != 1 {
		t.Fatalf("unexpected profile: %+v", loaded)
	}
}

func TestRecordingStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewRecordingStore(dir)

	rec := Recording{Name: "checkout-flow", Steps: []RecordedStep{{Tool: "click", Args: map[string]interface{}{"ref": "e1"}}}}
	if err := s.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.Load("checkout-flow", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Steps) != 1 || loaded.Steps[0].Tool != "click" {
		t.Fatalf("unexpected recording: %+v", loaded)
	}
}

func TestRecordingStoreLoadWithoutDomainFallsBackToScan(t *testing.T) {
	dir := t.TempDir()
	s := NewRecordingStore(dir)

	rec := Recording{Name: "checkout-flow", Domain: "shop.example.com", Steps: []RecordedStep{{Tool: "click"}}}
	if err := s.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "recordings", "shop.example.com", "checkout-flow.json")); err != nil {
		t.Fatalf("expected a domain subdirectory layout, stat failed: %v", err)
	}

	loaded, err := s.Load("checkout-flow", "")
	if err != nil {
		t.Fatalf("expected the domain-omitted lookup to find a recording saved with a domain: %v", err)
	}
	if loaded.Domain != "shop.example.com" {
		t.Errorf("expected domain shop.example.com, got %q", loaded.Domain)
	}
}
