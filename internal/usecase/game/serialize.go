package game

import (
	"bufio"
	"io"
	"strings"

	"gofish/internal/domain/sgf"
)

var sgfEscaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

// SerializeSGF writes the whole tree containing node as SGF text.
func SerializeSGF(node *sgf.Node) string {
	var builder strings.Builder
	serializeGameTree(&builder, node.Root())
	return builder.String()
}

// WriteSGF writes the whole tree containing node to w.
func WriteSGF(w io.Writer, node *sgf.Node) error {
	bw := bufio.NewWriter(w)
	serializeGameTree(bw, node.Root())
	return bw.Flush()
}

type sgfWriter interface {
	WriteString(s string) (int, error)
	WriteByte(c byte) error
}

func serializeGameTree(builder sgfWriter, node *sgf.Node) {
	builder.WriteByte('(')
	for {
		builder.WriteByte(';')
		for _, key := range node.Keys() {
			builder.WriteString(key)
			for _, v := range node.AllValues(key) {
				builder.WriteByte('[')
				builder.WriteString(sgfEscaper.Replace(v))
				builder.WriteByte(']')
			}
		}

		children := node.Children()
		if len(children) == 1 {
			node = children[0]
			continue
		}
		for _, child := range children {
			serializeGameTree(builder, child)
		}
		break
	}
	builder.WriteByte(')')
}
