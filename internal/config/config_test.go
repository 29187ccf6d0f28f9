/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// memStore stubs the OS keyring for tests.
type memStore struct{ m map[string]string }

func (s *memStore) Get(service, key string) (string, error) {
	v, ok := s.m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (s *memStore) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}
func (s *memStore) Delete(service, key string) error {
	delete(s.m, service+"/"+key)
	return nil
}

func useMemStore(t *testing.T) *memStore {
	t.Helper()
	old := tokenStore
	s := &memStore{m: map[string]string{}}
	tokenStore = s
	t.Cleanup(func() { tokenStore = old })
	return s
}

func TestEnvOverridesBackendURL(t *testing.T) {
	useMemStore(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetryAndPlacement(t *testing.T) {
	useMemStore(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvTelemetryOptIn, "true")
	t.Setenv(EnvMaxSuggestions, "5")
	t.Setenv(EnvIconWorldSize, "96")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
	if cfg.Placement.MaxSuggestions != 5 {
		t.Fatalf("Placement.MaxSuggestions = %d, want 5", cfg.Placement.MaxSuggestions)
	}
	if cfg.Placement.IconWorldSize != 96 {
		t.Fatalf("Placement.IconWorldSize = %v, want 96", cfg.Placement.IconWorldSize)
	}
}

func TestMergeIncludesPlacement(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Placement.MaxSuggestions = 6
	src.Placement.CollisionPadWorld = 12
	mergeInto(&dst, &src)
	if dst.Placement.MaxSuggestions != 6 || dst.Placement.CollisionPadWorld != 12 {
		t.Fatalf("placement fields not merged correctly: %#v", dst.Placement)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "Debug"
	src.Logging.Format = "JSON"
	src.Logging.Source = true
	src.Logging.File = "/tmp/hly.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/hly.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := useMemStore(t)
	t.Setenv("HOME", t.TempDir())

	cfg := Defaults()
	cfg.Placement.MaxSuggestions = 4
	cfg.Backend.BaseURL = "https://sync.example"
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Fatalf("unexpected config file name: %s", path)
	}

	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Placement.MaxSuggestions != 4 {
		t.Fatalf("MaxSuggestions = %d, want 4", got.Placement.MaxSuggestions)
	}
	if got.Backend.BaseURL != "https://sync.example" {
		t.Fatalf("BaseURL = %q", got.Backend.BaseURL)
	}
	if tok != "secret-token" {
		t.Fatalf("token = %q, want secret-token", tok)
	}
	if store.m["HintLayer/backend_token"] != "secret-token" {
		t.Fatalf("token not persisted to store")
	}
}
