package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/fln/internal/utils"
)

func TestInitializeConfigurationCreatesLocalFile(t *testing.T) {
	workingDirectory := t.TempDir()
	options := InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal}
	path, err := InitializeConfiguration(options)
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if path != expectedPath {
		t.Fatalf("expected path %s, got %s", expectedPath, path)
	}
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read config: %v", readErr)
	}
	var decoded map[string]any
	if decodeErr := json.Unmarshal(content, &decoded); decodeErr != nil {
		t.Fatalf("template is not valid JSON: %v", decodeErr)
	}
	if decoded["format"] != "md" {
		t.Fatalf("unexpected configuration content: %s", string(content))
	}
}

func TestInitializedTemplateResolvesToDefaults(t *testing.T) {
	workingDirectory := t.TempDir()
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory}); err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	overlay, loadErr := LoadFileOverlay(LoadOptions{RootDirectory: workingDirectory, SkipGlobal: true})
	if loadErr != nil {
		t.Fatalf("LoadFileOverlay error: %v", loadErr)
	}
	configuration, resolveErr := Resolve(workingDirectory, overlay, Overlay{})
	if resolveErr != nil {
		t.Fatalf("Resolve error: %v", resolveErr)
	}
	if configuration.MaximumFileSizeBytes != utils.DefaultMaximumFileSizeBytes {
		t.Fatalf("expected default file size, got %d", configuration.MaximumFileSizeBytes)
	}
	if !configuration.IncludeTree || !configuration.IncludeContents || !configuration.UseGitignore {
		t.Fatalf("unexpected toggles: %+v", configuration)
	}
}

func TestInitializeConfigurationHonorsGlobalTarget(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	path, err := InitializeConfiguration(InitOptions{Target: InitTargetGlobal, Force: true})
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	if !strings.HasPrefix(path, filepath.Join(configHome, utils.ApplicationName)) {
		t.Fatalf("expected configuration under the config home, got %s", path)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected file to exist at %s: %v", path, statErr)
	}
}

func TestInitializeConfigurationPreventsOverwriteWithoutForce(t *testing.T) {
	workingDirectory := t.TempDir()
	path := filepath.Join(workingDirectory, utils.ConfigFileName)
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write seed config: %v", err)
	}
	_, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal, Force: false})
	if err == nil {
		t.Fatalf("expected error when configuration already exists")
	}
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal, Force: true}); err != nil {
		t.Fatalf("force should overwrite: %v", err)
	}
}
