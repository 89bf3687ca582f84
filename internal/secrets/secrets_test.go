// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "database-url", "  postgres://matrix@db:5432/evidence  \n")
				writeFile(t, dir, "database-password", "s3cret")
				writeFile(t, dir, "log-token", "tok\n")
				return dir
			},
			want: map[string]string{
				"database-url":      "postgres://matrix@db:5432/evidence",
				"database-password": "s3cret",
				"log-token":         "tok",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "database-password", "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"database-password": "valid",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "database-url", "file.db")
				return dir
			},
			want: map[string]string{
				"database-url": "file.db",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "database-password", "pw")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"database-password": "pw",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestApplyDatabase(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.DatabaseConfig
		secrets map[string]string
		wantURL string
	}{
		{
			name:    "url from secret",
			secrets: map[string]string{KeyDatabaseURL: "postgres://matrix@db/evidence"},
			wantURL: "postgres://matrix@db/evidence",
		},
		{
			name:    "configured url wins",
			cfg:     types.DatabaseConfig{URL: "postgres://other@db/evidence"},
			secrets: map[string]string{KeyDatabaseURL: "postgres://matrix@db/evidence"},
			wantURL: "postgres://other@db/evidence",
		},
		{
			name:    "password injected",
			cfg:     types.DatabaseConfig{Driver: types.DriverPostgres, URL: "postgres://matrix@db/evidence"},
			secrets: map[string]string{KeyDatabasePassword: "s3cret"},
			wantURL: "postgres://matrix:s3cret@db/evidence",
		},
		{
			name:    "existing password kept",
			cfg:     types.DatabaseConfig{URL: "postgres://matrix:old@db/evidence"},
			secrets: map[string]string{KeyDatabasePassword: "s3cret"},
			wantURL: "postgres://matrix:old@db/evidence",
		},
		{
			name:    "sqlite untouched",
			cfg:     types.DatabaseConfig{Driver: types.DriverSQLite, URL: "data/evidence.db"},
			secrets: map[string]string{KeyDatabasePassword: "s3cret"},
			wantURL: "data/evidence.db",
		},
		{
			name:    "nothing to do",
			secrets: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.NoError(t, ApplyDatabase(&cfg, tt.secrets))
			assert.Equal(t, tt.wantURL, cfg.URL)
		})
	}
}
