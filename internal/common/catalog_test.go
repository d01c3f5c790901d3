package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "packages.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write catalog file: %v", err)
	}
	return path
}

func TestLoadPackageCatalog(t *testing.T) {
	path := writeCatalog(t, `
packages:
  - id: pkg-starter
    name: Starter
    amount: "250"
    return_percent: "50"
    duration_days: 7
  - id: pkg-retired
    name: Retired
    amount: "100"
    return_percent: "50"
    duration_days: 7
    active: false
`)

	packages, err := LoadPackageCatalog(path)
	if err != nil {
		t.Fatalf("LoadPackageCatalog failed: %v", err)
	}
	if len(packages) != 2 {
		t.Fatalf("Expected 2 packages, got %d", len(packages))
	}

	starter := packages[0]
	if starter.Id != "pkg-starter" || starter.DurationDays != 7 {
		t.Errorf("Unexpected starter package: %+v", starter)
	}
	if !starter.Active {
		t.Errorf("Expected packages to default to active")
	}
	if starter.Amount.String() != "250" {
		t.Errorf("Expected amount 250, got %s", starter.Amount.String())
	}
	if packages[1].Active {
		t.Errorf("Expected explicit active: false to be honored")
	}
}

func TestLoadPackageCatalog_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing id", "packages:\n  - name: X\n    amount: \"10\"\n    duration_days: 7\n"},
		{"zero duration", "packages:\n  - id: p\n    name: X\n    amount: \"10\"\n    duration_days: 0\n"},
		{"bad amount", "packages:\n  - id: p\n    name: X\n    amount: \"ten\"\n    duration_days: 7\n"},
		{"negative amount", "packages:\n  - id: p\n    name: X\n    amount: \"-10\"\n    duration_days: 7\n"},
		{"negative return", "packages:\n  - id: p\n    name: X\n    amount: \"10\"\n    return_percent: \"-5\"\n    duration_days: 7\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCatalog(t, tc.content)
			if _, err := LoadPackageCatalog(path); err == nil {
				t.Errorf("Expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadPackageCatalog_MissingFile(t *testing.T) {
	if _, err := LoadPackageCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
