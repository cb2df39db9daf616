package sgf

import (
	"fmt"
	"strconv"
	"strings"

	errs "gofish/internal/errors"
)

const DefaultBoardSize = 19

// boardKeys are the properties that change the position. Writing any of them
// drops the cached boards of the node and its whole subtree.
var boardKeys = map[string]bool{
	"B":  true,
	"W":  true,
	"AB": true,
	"AW": true,
	"AE": true,
	"PL": true,
	"SZ": true,
}

// Node is one SGF node. The parent owns its children; the parent link is
// only used for navigation. Property keys keep their insertion order so a
// tree writes back the way it was read.
type Node struct {
	parent   *Node
	children []*Node

	keys  []string
	props map[string][]string

	board *Board // position after this node, nil until derived
}

// NewTree returns a fresh root node.
func NewTree() *Node {
	return &Node{props: make(map[string][]string)}
}

// NewChild appends an empty child. The first child is the main line.
func (n *Node) NewChild() *Node {
	child := NewTree()
	child.parent = n
	n.children = append(n.children, child)
	return child
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

// Keys returns the property keys in insertion order.
func (n *Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

// Get returns the first value of key, or "" if it is absent.
func (n *Node) Get(key string) string {
	values := n.props[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (n *Node) AllValues(key string) []string {
	return append([]string(nil), n.props[key]...)
}

func (n *Node) HasKey(key string) bool {
	_, ok := n.props[key]
	return ok
}

// Set replaces every value of key with value.
func (n *Node) Set(key, value string) {
	n.mutorCheck(key)
	if !n.HasKey(key) {
		n.keys = append(n.keys, key)
	}
	n.props[key] = []string{value}
}

func (n *Node) AddValue(key, value string) {
	n.mutorCheck(key)
	if !n.HasKey(key) {
		n.keys = append(n.keys, key)
	}
	n.props[key] = append(n.props[key], value)
}

func (n *Node) DeleteKey(key string) {
	n.mutorCheck(key)
	if !n.HasKey(key) {
		return
	}
	delete(n.props, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

func (n *Node) mutorCheck(key string) {
	if boardKeys[key] {
		n.clearBoardRecursive()
	}
}

func (n *Node) clearBoardRecursive() {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node.board = nil
		stack = append(stack, node.children...)
	}
}

// Width of the board, from the cache if present, else from the root's SZ.
func (n *Node) Width() int {
	if n.board != nil {
		return n.board.Width
	}
	w, _ := n.sizeFromRoot()
	return w
}

func (n *Node) Height() int {
	if n.board != nil {
		return n.board.Height
	}
	_, h := n.sizeFromRoot()
	return h
}

// sizeFromRoot reads SZ as "19" or "19:13".
func (n *Node) sizeFromRoot() (width, height int) {
	sz := n.Root().Get("SZ")
	widthString, heightString := sz, sz
	if before, after, found := strings.Cut(sz, ":"); found {
		widthString, heightString = before, after
	}
	return parseSize(widthString), parseSize(heightString)
}

func parseSize(s string) int {
	size, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || size < 1 {
		return DefaultBoardSize
	}
	return min(size, MaxBoardSize)
}

// apply plays this node's own properties onto board. Data already in the
// tree is trusted: bad setup points are skipped and illegal moves become passes.
func (n *Node) apply(board *Board) {
	for _, s := range n.props["AE"] {
		_ = board.SetAt(s, Empty)
	}
	for _, s := range n.props["AB"] {
		if board.SetAt(s, Black) == nil {
			board.Active = White
		}
	}
	for _, s := range n.props["AW"] {
		if board.SetAt(s, White) == nil {
			board.Active = Black
		}
	}
	for _, s := range n.props["B"] {
		playOrPass(board, s, Black)
	}
	for _, s := range n.props["W"] {
		playOrPass(board, s, White)
	}

	switch n.Get("PL") {
	case "B", "b":
		board.Active = Black
	case "W", "w":
		board.Active = White
	}
}

func playOrPass(board *Board, s string, colour Colour) {
	if !board.LegalMoveColour(s, colour) {
		s = ""
	}
	board.PlayMoveOrPass(s, colour)
}

// cacheBoard derives and caches the position for this node and every
// uncached ancestor between it and the nearest cached one.
func (n *Node) cacheBoard() {
	if n.board != nil {
		return
	}

	var history []*Node
	var work *Board

	for node := n; node != nil; node = node.parent {
		if node.board != nil {
			work = node.board.Copy()
			break
		}
		history = append(history, node)
	}

	if work == nil {
		width, height := n.sizeFromRoot()
		work = NewBoard(width, height)
	}

	for i := len(history) - 1; i >= 0; i-- {
		history[i].apply(work)
		history[i].board = work.Copy()
	}
}

// MakeBoard returns a copy of the position after this node.
func (n *Node) MakeBoard() *Board {
	n.cacheBoard()
	return n.board.Copy()
}

// MakeMove returns the child in which the side to move plays s, creating it
// if no such child exists yet.
func (n *Node) MakeMove(s string) (*Node, error) {
	n.cacheBoard()

	if !n.board.LegalMove(s) {
		return nil, fmt.Errorf("%w: %q", errs.ErrIllegalMove, s)
	}

	key := n.board.Active.Key()
	for _, child := range n.children {
		if child.HasKey(key) && child.Get(key) == s {
			return child, nil
		}
	}

	child := n.NewChild()
	child.Set(key, s)
	return child, nil
}

// MakePass returns the child in which the side to move passes.
func (n *Node) MakePass() *Node {
	n.cacheBoard()

	key := n.board.Active.Key()
	for _, child := range n.children {
		if child.HasKey(key) && n.ValidatedMoveString(child.Get(key)) == "" {
			return child
		}
	}

	child := n.NewChild()
	child.Set(key, "")
	return child
}

// ValidatedMoveString returns s if it is an on-board point for this tree,
// otherwise "".
func (n *Node) ValidatedMoveString(s string) string {
	x, y, err := SToXY(s)
	if err != nil {
		return ""
	}
	if x < 0 || x >= n.Width() || y < 0 || y >= n.Height() {
		return ""
	}
	return s
}

func (n *Node) Root() *Node {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// End follows the main line to its last node.
func (n *Node) End() *Node {
	node := n
	for len(node.children) > 0 {
		node = node.children[0]
	}
	return node
}

// History lists the nodes from the root down to n.
func (n *Node) History() []*Node {
	var ret []*Node
	for node := n; node != nil; node = node.parent {
		ret = append(ret, node)
	}
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret
}

// SubtreeSize counts n and all of its descendants.
func (n *Node) SubtreeSize() int {
	count := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.children...)
	}
	return count
}

func (n *Node) TreeSize() int {
	return n.Root().SubtreeSize()
}

// MoveValue returns the move recorded in this node, if any.
func (n *Node) MoveValue() (colour Colour, s string, ok bool) {
	if n.HasKey("B") {
		return Black, n.Get("B"), true
	}
	if n.HasKey("W") {
		return White, n.Get("W"), true
	}
	return Empty, "", false
}
