// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: google-api-key, google-cse-id, github-token, hf-token,
// semantic-scholar-api-key, translate-api-key, trigger-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

// Key file names.
const (
	GoogleAPIKey          = "google-api-key"
	GoogleCSEID           = "google-cse-id"
	GitHubToken           = "github-token"
	HuggingFaceToken      = "hf-token"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	TranslateAPIKey       = "translate-api-key"
	TriggerToken          = "trigger-token"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger zerolog.Logger) (map[string]string, error) {
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
			logger.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills credentials left empty by configuration and environment from
// the loaded secrets. It returns the sorted names of the secrets it used.
func Apply(cfg *types.Config, secrets map[string]string) []string {
	targets := map[string]*string{
		GoogleAPIKey:          &cfg.Search.GoogleAPIKey,
		GoogleCSEID:           &cfg.Search.GoogleCSEID,
		GitHubToken:           &cfg.Search.GitHubToken,
		HuggingFaceToken:      &cfg.Search.HuggingFaceToken,
		SemanticScholarAPIKey: &cfg.Search.SemanticScholarAPIKey,
		TranslateAPIKey:       &cfg.Enrich.TranslateAPIKey,
		TriggerToken:          &cfg.Server.TriggerToken,
	}

	var used []string
	for name, dst := range targets {
		v, ok := secrets[name]
		if !ok || *dst != "" {
			continue
		}
		*dst = v
		used = append(used, name)
	}
	sort.Strings(used)
	return used
}
