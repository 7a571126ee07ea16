package output_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/fln/internal/output"
	"github.com/temirov/fln/internal/services/stream"
	"github.com/temirov/fln/internal/types"
)

const (
	fixtureVersion   = "1.2.3"
	fixtureGenerated = "2026-02-08 12:00"
	fixtureProject   = "demo"
)

func writeFixture(t *testing.T, root string, relativePath string, content string) *types.FileNode {
	t.Helper()
	fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return &types.FileNode{Name: filepath.Base(fullPath), Path: relativePath, Type: types.NodeTypeFile, Size: int64(len(content))}
}

func directoryNode(children ...*types.FileNode) *types.FileNode {
	return &types.FileNode{Type: types.NodeTypeDirectory, Children: children}
}

func fixtureHeader(root string, stats types.ScanStats) stream.DocumentEvent {
	return stream.DocumentEvent{
		Version:       fixtureVersion,
		Generated:     fixtureGenerated,
		ProjectName:   fixtureProject,
		RootDirectory: root,
		Stats:         stats,
	}
}

// renderDocument streams tree through a renderer for options into writer.
func renderDocument(t *testing.T, writer io.Writer, root string, tree *types.FileNode, stats types.ScanStats, options output.RenderOptions) error {
	t.Helper()
	renderer, err := output.NewStreamRenderer(writer, options)
	if err != nil {
		t.Fatalf("NewStreamRenderer: %v", err)
	}
	events := make(chan stream.Event)
	producerErr := make(chan error, 1)
	go func() {
		defer close(events)
		producerErr <- stream.StreamDocument(context.Background(), stream.DocumentOptions{
			RootDirectory:   root,
			Root:            tree,
			Header:          fixtureHeader(root, stats),
			IncludeContents: options.IncludeContents,
		}, events)
	}()

	var handleErr error
	for event := range events {
		if handleErr != nil {
			continue
		}
		handleErr = renderer.Handle(event)
	}
	if err := <-producerErr; err != nil {
		return err
	}
	if handleErr != nil {
		return handleErr
	}
	return renderer.Flush()
}
