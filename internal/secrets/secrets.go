// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads database credentials from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed file contents are the value.
//
// Recognized keys: database-url, database-password.
package secrets

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Key names read by ApplyDatabase.
const (
	KeyDatabaseURL      = "database-url"
	KeyDatabasePassword = "database-password"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ApplyDatabase fills cfg from secrets. The URL secret is used only when
// cfg has no URL. The password secret is set on postgres URLs that carry a
// user but no password.
func ApplyDatabase(cfg *types.DatabaseConfig, secrets map[string]string) error {
	if cfg.URL == "" {
		cfg.URL = secrets[KeyDatabaseURL]
	}

	password, ok := secrets[KeyDatabasePassword]
	if !ok || cfg.URL == "" || (cfg.Driver != "" && cfg.Driver != types.DriverPostgres) {
		return nil
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("parsing database url: %w", err)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil
	}
	if _, set := u.User.Password(); set {
		return nil
	}
	u.User = url.UserPassword(u.User.Username(), password)
	cfg.URL = u.String()
	return nil
}
