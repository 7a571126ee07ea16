package ignore_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/temirov/fln/internal/ignore"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if mkdirError := os.MkdirAll(filepath.Dir(path), 0o755); mkdirError != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), mkdirError)
	}
	if writeError := os.WriteFile(path, []byte(content), 0o600); writeError != nil {
		t.Fatalf("write %s: %v", path, writeError)
	}
}

func TestMatcherDefaultsAndExcludes(t *testing.T) {
	t.Parallel()

	matcher := ignore.NewMatcher(ignore.Options{
		RootDirectory:   t.TempDir(),
		ExcludePatterns: []string{"*.log", "/build", "docs/internal", "tmp/"},
		UseGitignore:    true,
	})

	testCases := []struct {
		name        string
		path        string
		isDirectory bool
		expected    bool
	}{
		{name: "root never matches", path: "", isDirectory: true, expected: false},
		{name: "git directory", path: ".git", isDirectory: true, expected: true},
		{name: "inside git directory", path: ".git/config", expected: true},
		{name: "nested node_modules", path: "web/node_modules/react/index.js", expected: true},
		{name: "lock file at depth", path: "app/yarn.lock", expected: true},
		{name: "config file", path: ".fln.json", expected: true},
		{name: "case insensitive default", path: "THUMBS.DB", expected: true},
		{name: "user glob any depth", path: "a/b/trace.log", expected: true},
		{name: "anchored pattern at root", path: "build/out.js", expected: true},
		{name: "anchored pattern not nested", path: "src/build/out.js", expected: false},
		{name: "inner slash pattern", path: "docs/internal/plan.md", expected: true},
		{name: "directory only matches directory", path: "cache/tmp", isDirectory: true, expected: true},
		{name: "directory only skips file", path: "cache/tmp", isDirectory: false, expected: false},
		{name: "plain source file", path: "src/main.go", expected: false},
		{name: "leading dot slash", path: "./build", isDirectory: true, expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			NewWithT(t).Expect(matcher.Matches(testCase.path, testCase.isDirectory)).To(Equal(testCase.expected))
		})
	}
}

func TestMatcherGitignoreLayering(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, ".gitignore"), "# comment\n\n*.log\nsecret.txt\n/out\n")
	writeFile(t, filepath.Join(rootDirectory, "pkg", ".gitignore"), "!keep.log\nfixtures/\n")

	matcher := ignore.NewMatcher(ignore.Options{RootDirectory: rootDirectory, UseGitignore: true})
	g.Expect(matcher.AddPatternsForDirectory(rootDirectory)).To(Succeed())

	g.Expect(matcher.Matches("secret.txt", false)).To(BeTrue())
	g.Expect(matcher.Matches("src/secret.txt", false)).To(BeTrue())
	g.Expect(matcher.Matches("src/ok.ts", false)).To(BeFalse())
	g.Expect(matcher.Matches("out", true)).To(BeTrue())
	g.Expect(matcher.Matches("src/out", true)).To(BeFalse())
	g.Expect(matcher.Matches("pkg/keep.log", false)).To(BeTrue())

	g.Expect(matcher.AddPatternsForDirectory(filepath.Join(rootDirectory, "pkg"))).To(Succeed())
	g.Expect(matcher.Matches("pkg/keep.log", false)).To(BeFalse())
	g.Expect(matcher.Matches("pkg/sub/keep.log", false)).To(BeFalse())
	g.Expect(matcher.Matches("pkg/other.log", false)).To(BeTrue())
	g.Expect(matcher.Matches("keep.log", false)).To(BeTrue())
	g.Expect(matcher.Matches("pkg/fixtures", true)).To(BeTrue())
	g.Expect(matcher.Matches("pkg/fixtures/data.json", false)).To(BeTrue())
	g.Expect(matcher.Matches("fixtures", true)).To(BeFalse())
}

func TestMatcherNegationCannotReincludeInsideIgnoredDirectory(t *testing.T) {
	t.Parallel()

	matcher := ignore.NewMatcher(ignore.Options{
		RootDirectory:   t.TempDir(),
		ExcludePatterns: []string{"vendor", "!vendor/keep.go"},
	})
	NewWithT(t).Expect(matcher.Matches("vendor/keep.go", false)).To(BeTrue())
}

func TestMatcherLoadsEachDirectoryOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rootDirectory := t.TempDir()
	gitIgnorePath := filepath.Join(rootDirectory, ".gitignore")
	writeFile(t, gitIgnorePath, "first.txt\n")

	matcher := ignore.NewMatcher(ignore.Options{RootDirectory: rootDirectory, UseGitignore: true})
	var waitGroup sync.WaitGroup
	for range 16 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_ = matcher.AddPatternsForDirectory(rootDirectory)
		}()
	}
	waitGroup.Wait()
	g.Expect(matcher.Matches("first.txt", false)).To(BeTrue())

	writeFile(t, gitIgnorePath, "second.txt\n")
	g.Expect(matcher.AddPatternsForDirectory(rootDirectory)).To(Succeed())
	g.Expect(matcher.Matches("second.txt", false)).To(BeFalse())
}

func TestMatcherWithoutGitignore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, ".gitignore"), "secret.txt\n")

	matcher := ignore.NewMatcher(ignore.Options{RootDirectory: rootDirectory, UseGitignore: false})
	g.Expect(matcher.AddPatternsForDirectory(rootDirectory)).To(Succeed())
	g.Expect(matcher.Matches("secret.txt", false)).To(BeFalse())
}

func TestMatcherDropsInvalidPatterns(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	matcher := ignore.NewIncludeMatcher([]string{"[unclosed", "*.md"}, nil)
	g.Expect(matcher.Empty()).To(BeFalse())
	g.Expect(matcher.Matches("README.md", false)).To(BeTrue())
	g.Expect(matcher.Matches("[unclosed", false)).To(BeFalse())
}

func TestIncludeMatcher(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	empty := ignore.NewIncludeMatcher(nil, nil)
	g.Expect(empty.Empty()).To(BeTrue())
	g.Expect(empty.Matches("anything", false)).To(BeFalse())

	matcher := ignore.NewIncludeMatcher([]string{"dist", "*.lock"}, nil)
	g.Expect(matcher.Matches("dist", true)).To(BeTrue())
	g.Expect(matcher.Matches("dist/app.js", false)).To(BeTrue())
	g.Expect(matcher.Matches("web/Cargo.lock", false)).To(BeTrue())
	g.Expect(matcher.Matches("src/app.js", false)).To(BeFalse())
}

func TestLoadIgnoreFilePatterns(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rootDirectory := t.TempDir()
	missing, missingError := ignore.LoadIgnoreFilePatterns(filepath.Join(rootDirectory, "absent"))
	g.Expect(missingError).NotTo(HaveOccurred())
	g.Expect(missing).To(BeEmpty())

	ignorePath := filepath.Join(rootDirectory, ".gitignore")
	writeFile(t, ignorePath, "# header\n\n  dist/  \r\n*.tmp\n")
	patterns, loadError := ignore.LoadIgnoreFilePatterns(ignorePath)
	g.Expect(loadError).NotTo(HaveOccurred())
	g.Expect(patterns).To(Equal([]string{"dist/", "*.tmp"}))
}
