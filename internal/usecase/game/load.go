package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gofish/internal/domain/sgf"
)

// Format names the record format selected by a file's extension.
func Format(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gib":
		return formatGIB
	case ".ngf":
		return formatNGF
	}
	return formatSGF
}

// IsRecordFile reports whether filename has an extension this package reads.
func IsRecordFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".sgf", ".gib", ".ngf":
		return true
	}
	return false
}

// LoadBytes parses buf with the importer chosen by filename. It always
// returns at least one root or an error.
func LoadBytes(filename string, buf []byte) ([]*sgf.Node, error) {
	switch Format(filename) {
	case formatGIB:
		return LoadGIB(buf)
	case formatNGF:
		return LoadNGF(buf)
	}
	return LoadSGF(buf)
}

// Load reads and parses a game record file.
func Load(filename string) ([]*sgf.Node, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return LoadBytes(filename, buf)
}

// Save writes the tree containing node to filename as SGF.
func Save(filename string, node *sgf.Node) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := WriteSGF(f, node); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return f.Close()
}

// SaveCollection writes several trees to one SGF file, one per line.
func SaveCollection(filename string, roots []*sgf.Node) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	for _, root := range roots {
		err = WriteSGF(f, root)
		if err == nil {
			_, err = f.WriteString("\n")
		}
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}
	return f.Close()
}
