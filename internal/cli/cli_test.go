package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/fln/internal/utils"
)

const cliGeneratedDate = "2026-02-08 12:00"

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

func writeProjectFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newCLIProject creates a project and isolates the user configuration directory.
func newCLIProject(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	rootDirectory := t.TempDir()
	writeProjectFile(t, filepath.Join(rootDirectory, "package.json"), `{"name":"demo","version":"1.0.0"}`)
	writeProjectFile(t, filepath.Join(rootDirectory, ".gitignore"), "secret.txt\n")
	writeProjectFile(t, filepath.Join(rootDirectory, "secret.txt"), "do not ship\n")
	writeProjectFile(t, filepath.Join(rootDirectory, "src", "ok.ts"), "export const ok = true;\n")
	return rootDirectory
}

func runCLI(t *testing.T, copier *recordingCopier, arguments ...string) (string, string, error) {
	t.Helper()
	if copier == nil {
		copier = &recordingCopier{}
	}
	command := createRootCommand(copier)
	var standardOutput bytes.Buffer
	var errorOutput bytes.Buffer
	command.SetOut(&standardOutput)
	command.SetErr(&errorOutput)
	command.SetArgs(normalizeBooleanFlagArguments(command, arguments))
	err := command.Execute()
	return standardOutput.String(), errorOutput.String(), err
}

func markdownFiles(t *testing.T, directory string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(directory, "*.md"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestRootCommandWritesSnapshot(t *testing.T) {
	rootDirectory := newCLIProject(t)

	standardOutput, _, err := runCLI(t, nil, rootDirectory, "--generated-date", cliGeneratedDate, "--no-sponsor-message")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(standardOutput, "✓ demo-1.0.0.md (2 files, ") {
		t.Fatalf("unexpected summary %q", standardOutput)
	}

	content, readErr := os.ReadFile(filepath.Join(rootDirectory, "demo-1.0.0.md"))
	if readErr != nil {
		t.Fatalf("read snapshot: %v", readErr)
	}
	document := string(content)
	if !strings.HasPrefix(document, utils.GeneratedMarker) {
		t.Fatalf("snapshot must start with the generated marker, got %q", document[:min(len(document), 40)])
	}
	if !strings.Contains(document, cliGeneratedDate) {
		t.Fatalf("snapshot must carry the generated date")
	}
	if !strings.Contains(document, "### src/ok.ts") {
		t.Fatalf("snapshot must contain src/ok.ts")
	}
	if strings.Contains(document, "do not ship") {
		t.Fatalf("ignored file leaked into the snapshot")
	}
}

func TestRootCommandFlagsReachConfiguration(t *testing.T) {
	rootDirectory := newCLIProject(t)
	outputPath := filepath.Join(t.TempDir(), "snap.json")

	standardOutput, _, err := runCLI(t, nil, rootDirectory,
		"--format", "JSON",
		"--no-contents",
		"--no-gitignore",
		"-o", outputPath,
		"--generated-date", cliGeneratedDate,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(standardOutput, "✓ snap.json (3 files, ") {
		t.Fatalf("unexpected summary %q", standardOutput)
	}

	content, readErr := os.ReadFile(outputPath)
	if readErr != nil {
		t.Fatalf("read snapshot: %v", readErr)
	}
	var document map[string]any
	if decodeErr := json.Unmarshal(content, &document); decodeErr != nil {
		t.Fatalf("decode snapshot: %v", decodeErr)
	}
	if _, hasFiles := document["files"]; hasFiles {
		t.Fatalf("files must be omitted without contents")
	}
	if document["generated"] != cliGeneratedDate {
		t.Fatalf("unexpected generated value %v", document["generated"])
	}
}

func TestRootCommandVerbosity(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		contains  []string
		empty     bool
	}{
		{name: "quiet", arguments: []string{"-q"}, empty: true},
		{name: "verbose", arguments: []string{"-V"}, contains: []string{"✓ demo-1.0.0.md created", "Breakdown", "  ├─ .json  1 file", "  └─ .ts    1 file"}},
		{name: "debug", arguments: []string{"--debug"}, contains: []string{"Processed files", "  ./package.json", "  ./src/ok.ts"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootDirectory := newCLIProject(t)
			arguments := append([]string{rootDirectory, "--no-sponsor-message"}, testCase.arguments...)
			standardOutput, _, err := runCLI(t, nil, arguments...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if testCase.empty && standardOutput != "" {
				t.Fatalf("expected no output, got %q", standardOutput)
			}
			for _, fragment := range testCase.contains {
				if !strings.Contains(standardOutput, fragment) {
					t.Fatalf("expected %q in %q", fragment, standardOutput)
				}
			}
			if len(markdownFiles(t, rootDirectory)) != 1 {
				t.Fatalf("expected one snapshot in %s", rootDirectory)
			}
		})
	}
}

func TestRootCommandRejectsConflictingVerbosity(t *testing.T) {
	rootDirectory := newCLIProject(t)

	_, _, err := runCLI(t, nil, rootDirectory, "--quiet", "--debug")
	if !errors.Is(err, ErrConflictingVerbosity) {
		t.Fatalf("expected ErrConflictingVerbosity, got %v", err)
	}
	if files := markdownFiles(t, rootDirectory); len(files) != 0 {
		t.Fatalf("no snapshot expected, found %v", files)
	}
}

func TestRootCommandDryRun(t *testing.T) {
	rootDirectory := newCLIProject(t)

	standardOutput, _, err := runCLI(t, nil, rootDirectory, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(standardOutput, "Dry run mode — output was not written\n✓ ") {
		t.Fatalf("unexpected dry run output %q", standardOutput)
	}
	if files := markdownFiles(t, rootDirectory); len(files) != 0 {
		t.Fatalf("dry run must not write, found %v", files)
	}
}

func TestRootCommandCopiesToClipboard(t *testing.T) {
	rootDirectory := newCLIProject(t)
	copier := &recordingCopier{}

	if _, _, err := runCLI(t, copier, rootDirectory, "--copy", "-q"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	content, readErr := os.ReadFile(filepath.Join(rootDirectory, "demo-1.0.0.md"))
	if readErr != nil {
		t.Fatalf("read snapshot: %v", readErr)
	}
	if len(copier.copied) != 1 || copier.copied[0] != string(content) {
		t.Fatalf("expected the snapshot on the clipboard")
	}
}

func TestRootCommandErrors(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "unknown format", arguments: []string{"--format", "xml"}},
		{name: "invalid size", arguments: []string{"--max-size", "huge"}},
		{name: "invalid generated date", arguments: []string{"--generated-date", "yesterday"}},
		{name: "missing config file", arguments: []string{"--config", "missing.json"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootDirectory := newCLIProject(t)
			arguments := append([]string{rootDirectory}, testCase.arguments...)
			if _, _, err := runCLI(t, nil, arguments...); err == nil {
				t.Fatalf("expected error for %v", testCase.arguments)
			}
			if files := markdownFiles(t, rootDirectory); len(files) != 0 {
				t.Fatalf("no snapshot expected, found %v", files)
			}
		})
	}
}

func TestRootCommandPrintsVersion(t *testing.T) {
	originalVersion := utils.Version
	utils.Version = "v4.5.6"
	t.Cleanup(func() { utils.Version = originalVersion })

	standardOutput, _, err := runCLI(t, nil, "--version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if standardOutput != "4.5.6\n" {
		t.Fatalf("expected bare version, got %q", standardOutput)
	}
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	projectDirectory := t.TempDir()

	standardOutput, _, err := runCLI(t, nil, "init", projectDirectory)
	if err != nil {
		t.Fatalf("execute init: %v", err)
	}
	configurationPath := filepath.Join(projectDirectory, utils.ConfigFileName)
	if standardOutput != "Configuration written to "+configurationPath+"\n" {
		t.Fatalf("unexpected init output %q", standardOutput)
	}
	if _, statErr := os.Stat(configurationPath); statErr != nil {
		t.Fatalf("configuration file missing: %v", statErr)
	}

	if _, _, err := runCLI(t, nil, "init", projectDirectory); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}
	if _, _, err := runCLI(t, nil, "init", projectDirectory, "--force"); err != nil {
		t.Fatalf("execute init --force: %v", err)
	}
}
