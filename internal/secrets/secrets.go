// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Recognized keys: surrealdb-password, firestore-api-key, firestore-bearer-token.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/careerlink/pkg/types"
)

// Secret file names.
const (
	SurrealPassword      = "surrealdb-password"
	FirestoreAPIKey      = "firestore-api-key"
	FirestoreBearerToken = "firestore-bearer-token"
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

// Apply fills empty credential fields of cfg from secrets and returns the
// sorted names of the secrets it used. Values already set in the
// configuration file or environment win.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	var used []string
	set := func(dst *string, key string) {
		if v, ok := secrets[key]; ok && *dst == "" {
			*dst = v
			used = append(used, key)
		}
	}
	set(&cfg.Store.SurrealDB.Password, SurrealPassword)
	set(&cfg.Store.Firestore.APIKey, FirestoreAPIKey)
	set(&cfg.Store.Firestore.BearerToken, FirestoreBearerToken)
	sort.Strings(used)
	return used
}
