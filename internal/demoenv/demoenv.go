// Copyright 2025 The A2A Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package demoenv loads the environment shared by the demo binaries.
//
// The demos read their Gemini credentials from a GOOGLE_API_KEY variable,
// optionally sourced from an .env file next to the binary, mirroring the
// repository's run scripts.
package demoenv

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is reported when no Gemini credentials are configured.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY environment variable not set and GOOGLE_GENAI_USE_VERTEXAI is not TRUE")

// Load reads variables from the first existing .env file among paths into the
// process environment. Variables already set in the environment win. With no
// arguments it tries "./.env". A missing file is not an error.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return godotenv.Load(p)
	}
	return nil
}

// APIKey returns the configured Gemini API key, or "" if unset.
func APIKey() string {
	return strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
}

// RequireAPIKey returns the configured Gemini API key. It fails with
// ErrMissingAPIKey when the key is absent, unless Vertex AI credentials are
// explicitly selected via GOOGLE_GENAI_USE_VERTEXAI=TRUE.
func RequireAPIKey() (string, error) {
	if key := APIKey(); key != "" {
		return key, nil
	}
	if os.Getenv("GOOGLE_GENAI_USE_VERTEXAI") == "TRUE" {
		return "", nil
	}
	return "", ErrMissingAPIKey
}
