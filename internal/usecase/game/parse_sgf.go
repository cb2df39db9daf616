package game

import (
	"strings"

	"gofish/internal/domain/sgf"
	errs "gofish/internal/errors"
)

const formatSGF = "SGF"

// LoadSGF reads every game in buf. Parsing stops at the first game that
// fails; the games before it are still returned. An error is returned only
// if not even the first game could be read.
func LoadSGF(buf []byte) ([]*sgf.Node, error) {
	var ret []*sgf.Node
	off := 0

	for len(buf)-off >= 3 {
		root, readCount, err := parseTree(buf, off, nil)
		if err != nil {
			if len(ret) > 0 {
				break
			}
			return nil, err
		}
		ret = append(ret, root)
		off += readCount
	}

	if len(ret) == 0 {
		return nil, errs.NewParseError(formatSGF, "found no game")
	}
	return ret, nil
}

func newNode(parent *sgf.Node) *sgf.Node {
	if parent == nil {
		return sgf.NewTree()
	}
	return parent.NewChild()
}

func decodeValue(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// parseTree reads one parenthesised tree starting at off. Subtrees recurse
// into it with their parent node. It returns the local root and the number
// of bytes consumed up to and including the closing paren.
func parseTree(buf []byte, off int, parentOfLocalRoot *sgf.Node) (*sgf.Node, int, error) {
	var (
		root, node  *sgf.Node
		treeStarted bool
		insideValue bool
		escapeFlag  bool
		keyComplete bool
		key, value  []byte
	)

	for i := off; i < len(buf); i++ {
		c := buf[i]

		if !treeStarted {
			switch {
			case c <= ' ':
				continue
			case c == '(':
				treeStarted = true
				continue
			default:
				return nil, 0, errs.NewParseError(formatSGF, "unexpected byte before (")
			}
		}

		if insideValue {
			switch {
			case escapeFlag:
				value = append(value, c)
				escapeFlag = false
			case c == '\\':
				escapeFlag = true
			case c == ']':
				insideValue = false
				if node == nil {
					return nil, 0, errs.NewParseError(formatSGF, "value ended by ] but there was no node")
				}
				node.AddValue(string(key), decodeValue(value))
			default:
				value = append(value, c)
			}
			continue
		}

		switch {
		case c <= ' ' || (c >= 'a' && c <= 'z'):
			continue

		case c == '[':
			if node == nil {
				node = newNode(parentOfLocalRoot)
				root = node
			}
			value = value[:0]
			insideValue = true
			keyComplete = true
			if len(key) == 0 {
				return nil, 0, errs.NewParseError(formatSGF, "value started by [ but key was empty")
			}
			if k := string(key); (k == "B" || k == "W") && (node.HasKey("B") || node.HasKey("W")) {
				return nil, 0, errs.NewParseError(formatSGF, "multiple moves in node")
			}

		case c == '(':
			if node == nil {
				return nil, 0, errs.NewParseError(formatSGF, "new subtree started but there was no node")
			}
			_, readCount, err := parseTree(buf, i, node)
			if err != nil {
				return nil, 0, err
			}
			// the ( just read is counted by the recursion too
			i += readCount - 1

		case c == ')':
			if root == nil {
				return nil, 0, errs.NewParseError(formatSGF, "subtree ended but there was no local root")
			}
			return root, i + 1 - off, nil

		case c == ';':
			if node == nil {
				node = newNode(parentOfLocalRoot)
				root = node
			} else {
				node = node.NewChild()
			}
			key = key[:0]
			keyComplete = false

		case c >= 'A' && c <= 'Z':
			if keyComplete {
				key = key[:0]
				keyComplete = false
			}
			key = append(key, c)

		default:
			return nil, 0, errs.NewParseError(formatSGF, "unacceptable byte while expecting key")
		}
	}

	return nil, 0, errs.NewParseError(formatSGF, "reached end of input")
}
