package clipboard_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/fln/internal/services/clipboard"
)

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

func TestCopyFileCopiesDocument(t *testing.T) {
	documentPath := filepath.Join(t.TempDir(), "demo.md")
	if err := os.WriteFile(documentPath, []byte("# demo\n"), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}
	copier := &recordingCopier{}
	if err := clipboard.CopyFile(copier, documentPath); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if len(copier.copied) != 1 || copier.copied[0] != "# demo\n" {
		t.Fatalf("unexpected clipboard content %q", copier.copied)
	}
}

func TestCopyFileMissingDocument(t *testing.T) {
	copier := &recordingCopier{}
	if err := clipboard.CopyFile(copier, filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatalf("expected error for missing document")
	}
	if len(copier.copied) != 0 {
		t.Fatalf("nothing should be copied, got %q", copier.copied)
	}
}
