package builtin

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/aretw0/shipyard/internal/esdata"
)

// archive accumulates zip entries in memory.
type archive struct {
	buf bytes.Buffer
	zw  *zip.Writer
}

func newArchive() *archive {
	a := &archive{}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

// WriteFile adds a deflate-compressed file entry.
func (a *archive) WriteFile(name string, data []byte) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// WriteDir adds a directory entry. A trailing slash is appended if missing.
func (a *archive) WriteDir(name string) error {
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	if _, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store}); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", name, err)
	}
	return nil
}

// WriteNodes serializes nodes in the data file format and adds them as a file.
func (a *archive) WriteNodes(name string, nodes []*esdata.Node) error {
	return a.WriteFile(name, []byte(esdata.String(nodes)))
}

// Bytes finalizes the archive and returns its contents.
func (a *archive) Bytes() ([]byte, error) {
	if err := a.zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return a.buf.Bytes(), nil
}

// pluginDescription builds the nodes of a plugin.txt file.
func pluginDescription(name string, about []string, version string) []*esdata.Node {
	nodes := []*esdata.Node{esdata.NewNode("name", name)}
	for _, line := range about {
		if line = strings.TrimSpace(line); line != "" {
			nodes = append(nodes, esdata.NewNode("about", line))
		}
	}
	return append(nodes, esdata.NewNode("version", version))
}

// parseSources parses every document and returns their root nodes in order.
func parseSources(sources []string) []*esdata.Node {
	var roots []*esdata.Node
	for _, src := range sources {
		roots = append(roots, esdata.Parse(src)...)
	}
	return roots
}

// lastChild returns the last direct child of n with the given key and at least
// minTokens tokens. Later definitions win in the data format.
func lastChild(n *esdata.Node, key string, minTokens int) *esdata.Node {
	var found *esdata.Node
	for _, c := range n.Children {
		if c.Key() == key && len(c.Tokens) >= minTokens {
			found = c
		}
	}
	return found
}
