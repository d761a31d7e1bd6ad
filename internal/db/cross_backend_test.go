package db

import (
	"os"
	"testing"
)

// Cross-backend integration checks. These tests run only when the corresponding
// DSN environment variable is set. They are skipped by default to keep local
// developer test runs fast.
func TestCrossBackend_Postgres(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set; skipping Postgres integration test")
	}
	s, err := New("postgres", dsn)
	if err != nil {
		t.Fatalf("postgres New failed: %v", err)
	}
	roundtripSetting(t, s)
}

func TestCrossBackend_MySQL(t *testing.T) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN not set; skipping MySQL integration test")
	}
	s, err := New("mysql", dsn)
	if err != nil {
		t.Fatalf("mysql New failed: %v", err)
	}
	roundtripSetting(t, s)
}

// roundtripSetting writes, reads back and deletes a setting through the given
// store. It exercises the upsert path twice so the dialect-specific conflict
// clause gets covered on real servers.
func roundtripSetting(t *testing.T, s Store) {
	t.Helper()
	const key = "integration.probe"
	if err := s.SetSetting(key, "one"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := s.SetSetting(key, "two"); err != nil {
		t.Fatalf("SetSetting upsert failed: %v", err)
	}
	v, err := s.GetSetting(key)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if v != "two" {
		t.Fatalf("GetSetting = %q, want two", v)
	}
	if err := s.DeleteSetting(key); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
}
