// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials. Keys come from three
// places, checked in order: the process environment, a directory of
// plain-text files (filename is the key, trimmed contents the value), and
// a KEY=VALUE env file such as ~/.env.
//
// Supported keys: FAL_KEY (env var and env file), fal-key (secrets directory).
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

// ErrNotFound is returned when a key is absent from every source.
var ErrNotFound = errors.New("secret not found")

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile parses a KEY=VALUE file. Blank lines and # comments are
// ignored. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	env := gotenv.Parse(f)
	values := make(map[string]string, len(env))
	for k, v := range env {
		if v = strings.TrimSpace(v); v != "" {
			values[strings.TrimSpace(k)] = v
		}
	}
	return values, nil
}

// DefaultEnvFile returns ~/.env, or "" when the home directory is unknown.
func DefaultEnvFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".env")
}

// Store resolves a key across the environment, the secrets directory,
// and the env file.
type Store struct {
	Dir     map[string]string
	EnvFile map[string]string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Get returns the value for envName, looking first in the environment,
// then for fileName in the secrets directory, then for envName in the
// env file.
func (s Store) Get(envName, fileName string) (string, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(envName)); v != "" {
		return v, nil
	}
	if v, ok := s.Dir[fileName]; ok && v != "" {
		return v, nil
	}
	if v, ok := s.EnvFile[envName]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s: %w", envName, ErrNotFound)
}
