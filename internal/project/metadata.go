// Package project names the snapshot after the project found at the scan root.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
)

const (
	packageJSONFileName    = "package.json"
	vcpkgFileName          = "vcpkg.json"
	pyprojectFileName      = "pyproject.toml"
	cargoFileName          = "Cargo.toml"
	goModFileName          = "go.mod"
	cmakeListsFileName     = "CMakeLists.txt"
	fallbackProjectName    = "project"
	modulePathSeparator    = "/"
	tokenReplacement       = "-"
	trimmedTokenCharacters = ".-"
)

var (
	invalidTokenCharacters = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	repeatedDashes         = regexp.MustCompile(`-+`)
	cmakeProjectPattern    = regexp.MustCompile(`(?i)project\s*\(\s*([\w.-]+)`)
	cmakeVersionPattern    = regexp.MustCompile(`(?i)version\s+([\d.]+)`)
)

// Metadata identifies a project by name and optional version.
type Metadata struct {
	Name    string
	Version string
}

// FileBaseName returns "<name>-<version>.<format>" or "<name>.<format>".
func (metadata Metadata) FileBaseName(format string) string {
	if metadata.Version != "" {
		return metadata.Name + tokenReplacement + metadata.Version + "." + format
	}
	return metadata.Name + "." + format
}

type metadataReader func(rootDirectory string) (Metadata, bool)

var metadataReaders = []metadataReader{
	readJSONManifest(packageJSONFileName),
	readJSONManifest(vcpkgFileName),
	readPyproject,
	readCargoManifest,
	readGoModule,
	readCMakeLists,
}

// ResolveMetadata returns the first project identity found in the root's manifests.
// Unreadable or malformed manifests are passed over. Without any manifest the
// normalized directory name is used, or "project" when nothing usable remains.
func ResolveMetadata(rootDirectory string) Metadata {
	for _, reader := range metadataReaders {
		if metadata, found := reader(rootDirectory); found {
			return metadata
		}
	}
	name := NormalizeFileToken(filepath.Base(filepath.Clean(rootDirectory)))
	if name == "" {
		name = fallbackProjectName
	}
	return Metadata{Name: name}
}

// NormalizeFileToken turns an arbitrary name into a file-name-safe token.
func NormalizeFileToken(rawValue string) string {
	token := strings.TrimSpace(rawValue)
	token = strings.ReplaceAll(token, "@", "")
	token = invalidTokenCharacters.ReplaceAllString(token, tokenReplacement)
	token = repeatedDashes.ReplaceAllString(token, tokenReplacement)
	return strings.Trim(token, trimmedTokenCharacters)
}

func newMetadata(rawName, rawVersion string) (Metadata, bool) {
	name := NormalizeFileToken(rawName)
	if name == "" {
		return Metadata{}, false
	}
	return Metadata{Name: name, Version: NormalizeFileToken(rawVersion)}, true
}

func readManifest(rootDirectory, fileName string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(rootDirectory, fileName))
	if err != nil {
		return nil, false
	}
	return data, true
}

type jsonManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func readJSONManifest(fileName string) metadataReader {
	return func(rootDirectory string) (Metadata, bool) {
		data, found := readManifest(rootDirectory, fileName)
		if !found {
			return Metadata{}, false
		}
		var manifest jsonManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return Metadata{}, false
		}
		return newMetadata(manifest.Name, manifest.Version)
	}
}

type tomlPackage struct {
	Name    any `toml:"name"`
	Version any `toml:"version"`
}

type pyprojectManifest struct {
	Project tomlPackage `toml:"project"`
	Tool    struct {
		Poetry tomlPackage `toml:"poetry"`
	} `toml:"tool"`
}

type cargoManifest struct {
	Package tomlPackage `toml:"package"`
}

func readPyproject(rootDirectory string) (Metadata, bool) {
	data, found := readManifest(rootDirectory, pyprojectFileName)
	if !found {
		return Metadata{}, false
	}
	var manifest pyprojectManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return Metadata{}, false
	}
	name := firstString(manifest.Project.Name, manifest.Tool.Poetry.Name)
	version := firstString(manifest.Project.Version, manifest.Tool.Poetry.Version)
	return newMetadata(name, version)
}

func readCargoManifest(rootDirectory string) (Metadata, bool) {
	data, found := readManifest(rootDirectory, cargoFileName)
	if !found {
		return Metadata{}, false
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return Metadata{}, false
	}
	return newMetadata(firstString(manifest.Package.Name), firstString(manifest.Package.Version))
}

func readGoModule(rootDirectory string) (Metadata, bool) {
	data, found := readManifest(rootDirectory, goModFileName)
	if !found {
		return Metadata{}, false
	}
	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return Metadata{}, false
	}
	segments := strings.Split(strings.TrimRight(modulePath, modulePathSeparator), modulePathSeparator)
	return newMetadata(segments[len(segments)-1], "")
}

func readCMakeLists(rootDirectory string) (Metadata, bool) {
	data, found := readManifest(rootDirectory, cmakeListsFileName)
	if !found {
		return Metadata{}, false
	}
	nameMatch := cmakeProjectPattern.FindSubmatch(data)
	if nameMatch == nil {
		return Metadata{}, false
	}
	version := ""
	if versionMatch := cmakeVersionPattern.FindSubmatch(data); versionMatch != nil {
		version = string(versionMatch[1])
	}
	return newMetadata(string(nameMatch[1]), version)
}

// firstString returns the first non-empty string value. Workspace manifests may
// carry tables such as `version.workspace = true` where a string is expected.
func firstString(values ...any) string {
	for _, value := range values {
		if text, isString := value.(string); isString && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}
