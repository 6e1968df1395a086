package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/lineview/internal/config"
)

func TestRootRequiresTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "--config", path)
	if err == nil || !strings.Contains(err.Error(), "not a terminal") {
		t.Errorf("err = %v, want a not-a-terminal error", err)
	}
}

func TestRootRejectsArgs(t *testing.T) {
	if _, err := execute(t, "extra"); err == nil {
		t.Error("expected an error for positional arguments")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("prompt = \"% \"\nlog_level = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    rootOptions
		prompt  string
		level   string
		mouse   bool
		wantErr error
	}{
		{"file", rootOptions{configPath: path}, "% ", "warn", true, nil},
		{"missing file", rootOptions{configPath: filepath.Join(dir, "none.toml")}, "$ ", "info", true, nil},
		{"log level flag", rootOptions{configPath: path, logLevel: "debug"}, "% ", "debug", true, nil},
		{"no mouse", rootOptions{configPath: path, noMouse: true}, "% ", "warn", false, nil},
		{"bad log level", rootOptions{configPath: path, logLevel: "loud"}, "", "", false, config.ErrInvalidSetting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(&tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if cfg.Prompt != tt.prompt {
				t.Errorf("Prompt = %q, want %q", cfg.Prompt, tt.prompt)
			}
			if cfg.LogLevel != tt.level {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, tt.level)
			}
			if cfg.Mouse != tt.mouse {
				t.Errorf("Mouse = %v, want %v", cfg.Mouse, tt.mouse)
			}
		})
	}
}

func TestOpenLogger(t *testing.T) {
	cfg := config.Default()
	log, closeLog, err := openLogger(&cfg)
	if err != nil {
		t.Fatalf("openLogger: %v", err)
	}
	log.Info("discarded")
	closeLog()

	cfg.LogFile = filepath.Join(t.TempDir(), "lineview.log")
	log, closeLog, err = openLogger(&cfg)
	if err != nil {
		t.Fatalf("openLogger: %v", err)
	}
	log.Info("hello %d", 42)
	closeLog()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[INFO] lineview: hello 42") {
		t.Errorf("log = %q", data)
	}
}
