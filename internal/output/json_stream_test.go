package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/temirov/fln/internal/output"
	"github.com/temirov/fln/internal/types"
)

type decodedFile struct {
	Path       string  `json:"path"`
	Language   string  `json:"language"`
	IsBinary   bool    `json:"isBinary"`
	SkipReason string  `json:"skipReason"`
	Content    *string `json:"content"`
}

type decodedDocument struct {
	Version       string          `json:"version"`
	Generated     string          `json:"generated"`
	ProjectName   string          `json:"projectName"`
	RootDirectory string          `json:"rootDirectory"`
	Stats         types.ScanStats `json:"stats"`
	Options       struct {
		Format          string   `json:"format"`
		IncludeTree     bool     `json:"includeTree"`
		IncludeContents bool     `json:"includeContents"`
		ExcludePatterns []string `json:"excludePatterns"`
		IncludePatterns []string `json:"includePatterns"`
	} `json:"options"`
	Tree  *types.FileNode `json:"tree"`
	Files []decodedFile   `json:"files"`
}

func TestJSONDocumentRoundTripsContent(t *testing.T) {
	g := NewWithT(t)
	root := t.TempDir()
	texts := map[string]string{
		"index.html": "<script>if (a && b) { x = \"q\" }</script>\n",
		"notes.txt":  "line one\r\n\ttabbed\nпривет 你好 😀",
		"empty.txt":  "",
	}
	binaryNode := writeFixture(t, root, "data.bin", "\x00\x01\x02")
	binaryNode.IsBinary = true
	tree := directoryNode(
		writeFixture(t, root, "index.html", texts["index.html"]),
		writeFixture(t, root, "notes.txt", texts["notes.txt"]),
		writeFixture(t, root, "empty.txt", texts["empty.txt"]),
		binaryNode,
	)
	options := output.RenderOptions{Format: types.FormatJSON, IncludeTree: true, IncludeContents: true, ExcludePatterns: []string{"*.log"}}

	var buffer bytes.Buffer
	g.Expect(renderDocument(t, &buffer, root, tree, types.ScanStats{Files: 4, Directories: 1, Binary: 1}, options)).To(Succeed())
	g.Expect(strings.HasSuffix(buffer.String(), "\n")).To(BeFalse())
	g.Expect(buffer.String()).To(ContainSubstring("<script>"))

	var document decodedDocument
	g.Expect(json.Unmarshal(buffer.Bytes(), &document)).To(Succeed())
	g.Expect(document.Version).To(Equal(fixtureVersion))
	g.Expect(document.Generated).To(Equal(fixtureGenerated))
	g.Expect(document.ProjectName).To(Equal(fixtureProject))
	g.Expect(document.RootDirectory).To(Equal(root))
	g.Expect(document.Stats.Files).To(Equal(4))
	g.Expect(document.Stats.Binary).To(Equal(1))
	g.Expect(document.Options.Format).To(Equal(types.FormatJSON))
	g.Expect(document.Options.ExcludePatterns).To(Equal([]string{"*.log"}))
	g.Expect(document.Options.IncludePatterns).To(BeEmpty())
	g.Expect(document.Tree).NotTo(BeNil())
	g.Expect(document.Tree.Children).To(HaveLen(4))

	g.Expect(document.Files).To(HaveLen(4))
	for _, file := range document.Files[:3] {
		g.Expect(file.IsBinary).To(BeFalse())
		g.Expect(file.Content).NotTo(BeNil())
		g.Expect(*file.Content).To(Equal(texts[file.Path]), file.Path)
	}
	g.Expect(document.Files[0].Language).To(Equal("html"))
	g.Expect(document.Files[3].Path).To(Equal("data.bin"))
	g.Expect(document.Files[3].IsBinary).To(BeTrue())
	g.Expect(document.Files[3].Content).To(BeNil())
}

func TestJSONDocumentMarksReadErrors(t *testing.T) {
	g := NewWithT(t)
	root := t.TempDir()
	tree := directoryNode(&types.FileNode{Name: "gone.txt", Path: "gone.txt", Type: types.NodeTypeFile, Size: 4})

	var buffer bytes.Buffer
	g.Expect(renderDocument(t, &buffer, root, tree, types.ScanStats{Files: 1}, output.RenderOptions{Format: types.FormatJSON, IncludeContents: true})).To(Succeed())
	g.Expect(buffer.String()).To(ContainSubstring(`{"path":"gone.txt","language":"txt","isBinary":false,"skipReason":"readError","content":null}`))

	var document decodedDocument
	g.Expect(json.Unmarshal(buffer.Bytes(), &document)).To(Succeed())
	g.Expect(document.Files).To(HaveLen(1))
	g.Expect(document.Files[0].SkipReason).To(Equal(string(types.SkipReasonReadError)))
}

func TestJSONDocumentWithoutContents(t *testing.T) {
	g := NewWithT(t)
	root := t.TempDir()
	tree := directoryNode(writeFixture(t, root, "a.txt", "a"))

	var buffer bytes.Buffer
	g.Expect(renderDocument(t, &buffer, root, tree, types.ScanStats{Files: 1}, output.RenderOptions{Format: types.FormatJSON, IncludeTree: true})).To(Succeed())
	g.Expect(buffer.String()).NotTo(ContainSubstring(`"files"`))

	var document decodedDocument
	g.Expect(json.Unmarshal(buffer.Bytes(), &document)).To(Succeed())
	g.Expect(document.Tree).NotTo(BeNil())
	g.Expect(document.Files).To(BeNil())
}

func TestJSONDocumentEmptyFilesArray(t *testing.T) {
	g := NewWithT(t)
	root := t.TempDir()
	tree := directoryNode(&types.FileNode{Name: "empty", Path: "empty", Type: types.NodeTypeDirectory})

	var buffer bytes.Buffer
	g.Expect(renderDocument(t, &buffer, root, tree, types.ScanStats{Directories: 2}, output.RenderOptions{Format: types.FormatJSON, IncludeContents: true})).To(Succeed())
	g.Expect(strings.HasSuffix(buffer.String(), `,"files":[]}`)).To(BeTrue(), buffer.String())
	g.Expect(json.Valid(buffer.Bytes())).To(BeTrue())
}
