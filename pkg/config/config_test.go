package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("FOLIO_TEST_NAME", "portfolio")
	p := writeConfig(t, "port: 8080\nname: ${FOLIO_TEST_NAME}\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 8080 || s.Name != "portfolio" {
		t.Errorf("got %+v", s)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeConfig(t, "port: 0\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOptionalMissingFileKeepsDefaults(t *testing.T) {
	s := sample{Port: 3000, Name: "default"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s, nil); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Port != 3000 || s.Name != "default" {
		t.Errorf("defaults changed: %+v", s)
	}
}

func TestLoadOptionalOverlayWins(t *testing.T) {
	p := writeConfig(t, "port: 8080\nname: file\n")
	s := sample{Port: 3000}
	err := LoadOptional(p, &s, func(s *sample) error {
		s.Port = 9090
		return nil
	})
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Port != 9090 || s.Name != "file" {
		t.Errorf("got %+v", s)
	}
}

func TestLoadOptionalOverlayError(t *testing.T) {
	s := sample{Port: 1}
	err := LoadOptional("", &s, func(*sample) error { return errors.New("bad env") })
	if err == nil || !strings.Contains(err.Error(), "bad env") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOptionalBadYAML(t *testing.T) {
	p := writeConfig(t, "port: [unclosed\n")
	s := sample{Port: 1}
	if err := LoadOptional(p, &s, nil); err == nil {
		t.Fatal("expected parse error")
	}
}
