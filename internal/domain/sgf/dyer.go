package sgf

// dyerPlies are the move numbers sampled by the Dyer signature, in output order.
var dyerPlies = []int{20, 40, 60, 31, 51, 71}

const (
	dyerUnknown = "??"
	dyerLastPly = 71
)

// Dyer returns the 12 character Dyer signature of the game's main line.
// It identifies the same game across record formats. Moves that are passes
// or off the board, and plies the game never reaches, read as "??".
func (n *Node) Dyer() string {
	root := n.Root()
	sampled := make(map[int]string, len(dyerPlies))
	moveCount := 0

	for node := root; ; node = node.children[0] {
		if _, s, ok := node.MoveValue(); ok {
			moveCount++
			if p := root.ValidatedMoveString(s); p != "" {
				sampled[moveCount] = p
			}
		}
		if len(node.children) == 0 || moveCount >= dyerLastPly {
			break
		}
	}

	signature := make([]byte, 0, 2*len(dyerPlies))
	for _, ply := range dyerPlies {
		s, ok := sampled[ply]
		if !ok {
			s = dyerUnknown
		}
		signature = append(signature, s...)
	}
	return string(signature)
}
