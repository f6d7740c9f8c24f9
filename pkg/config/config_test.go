package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "aidea")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 8080\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "aidea" || s.Port != 8080 {
		t.Errorf("loaded %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	s := sample{Name: "default", Port: 80}
	found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	if err != nil || found {
		t.Fatalf("missing file: found=%v err=%v", found, err)
	}
	if s.Name != "default" {
		t.Errorf("defaults overwritten: %+v", s)
	}

	path := writeFile(t, "port: 9090\n")
	found, err = LoadOrDefault(path, &s)
	if err != nil || !found {
		t.Fatalf("existing file: found=%v err=%v", found, err)
	}
	if s.Name != "default" || s.Port != 9090 {
		t.Errorf("merged %+v", s)
	}
}
