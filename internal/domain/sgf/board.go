package sgf

import (
	"fmt"

	errs "gofish/internal/errors"
)

type Colour uint8

const (
	Empty Colour = iota
	Black
	White
)

func (c Colour) Opposite() Colour {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// Key is the move property for the colour: "B" or "W".
func (c Colour) Key() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return ""
}

func (c Colour) String() string {
	switch c {
	case Black:
		return "b"
	case White:
		return "w"
	}
	return ""
}

type point struct {
	x, y int
}

// Board is a mutable position. Ko is the compact coordinate of the point
// that may not be played next, or "" when there is none.
type Board struct {
	Width   int
	Height  int
	Ko      string
	Active  Colour
	CapsByB int
	CapsByW int

	state [][]Colour // [x][y]
}

func NewBoard(width, height int) *Board {
	b := &Board{
		Width:  width,
		Height: height,
		Active: Black,
		state:  make([][]Colour, width),
	}
	for x := range b.state {
		b.state[x] = make([]Colour, height)
	}
	return b
}

func (b *Board) Copy() *Board {
	c := *b
	c.state = make([][]Colour, b.Width)
	for x := range c.state {
		c.state[x] = append([]Colour(nil), b.state[x]...)
	}
	return &c
}

func (b *Board) Equal(other *Board) bool {
	if other == nil {
		return false
	}
	if b.Width != other.Width || b.Height != other.Height {
		return false
	}
	if b.Ko != other.Ko || b.Active != other.Active {
		return false
	}
	if b.CapsByB != other.CapsByB || b.CapsByW != other.CapsByW {
		return false
	}
	for x := 0; x < b.Width; x++ {
		for y := 0; y < b.Height; y++ {
			if b.state[x][y] != other.state[x][y] {
				return false
			}
		}
	}
	return true
}

func (b *Board) onBoard(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

func (b *Board) parse(s string) (point, error) {
	x, y, err := SToXY(s)
	if err != nil {
		return point{}, err
	}
	if !b.onBoard(x, y) {
		return point{}, fmt.Errorf("%w: %q is off a %dx%d board", errs.ErrInvalidCoordinate, s, b.Width, b.Height)
	}
	return point{x, y}, nil
}

func (b *Board) StateAt(s string) (Colour, error) {
	p, err := b.parse(s)
	if err != nil {
		return Empty, err
	}
	return b.state[p.x][p.y], nil
}

func (b *Board) SetAt(s string, colour Colour) error {
	if colour > White {
		return fmt.Errorf("%w: colour %d", errs.ErrInvalidCoordinate, colour)
	}
	p, err := b.parse(s)
	if err != nil {
		return err
	}
	b.state[p.x][p.y] = colour
	return nil
}

// Neighbours returns the on-board orthogonal neighbours of s.
func (b *Board) Neighbours(s string) ([]string, error) {
	p, err := b.parse(s)
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, 4)
	for _, n := range b.neighbours(p) {
		ret = append(ret, n.String())
	}
	return ret, nil
}

func (p point) String() string {
	s, _ := XYToS(p.x, p.y)
	return s
}

func (b *Board) neighbours(p point) []point {
	ret := make([]point, 0, 4)
	if p.x < b.Width-1 {
		ret = append(ret, point{p.x + 1, p.y})
	}
	if p.x > 0 {
		ret = append(ret, point{p.x - 1, p.y})
	}
	if p.y < b.Height-1 {
		ret = append(ret, point{p.x, p.y + 1})
	}
	if p.y > 0 {
		ret = append(ret, point{p.x, p.y - 1})
	}
	return ret
}

func (b *Board) at(p point) Colour {
	return b.state[p.x][p.y]
}

// HasLiberties reports whether the group containing s touches an empty point.
// An empty or invalid s has no liberties.
func (b *Board) HasLiberties(s string) bool {
	p, err := b.parse(s)
	if err != nil || b.at(p) == Empty {
		return false
	}
	return b.hasLiberties(p, map[point]bool{})
}

// hasLiberties flood fills the group at p. Points already in touched are
// treated as walls, which lets the legality check pretend a point is taken.
func (b *Board) hasLiberties(p point, touched map[point]bool) bool {
	colour := b.at(p)
	touched[p] = true
	stack := []point{p}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range b.neighbours(cur) {
			if touched[n] {
				continue
			}
			switch b.at(n) {
			case Empty:
				return true
			case colour:
				touched[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

// DestroyGroup removes the group containing s and credits the captures to
// the other colour. Returns the number of stones removed.
func (b *Board) DestroyGroup(s string) int {
	p, err := b.parse(s)
	if err != nil {
		return 0
	}
	return b.destroyGroup(p)
}

func (b *Board) destroyGroup(p point) int {
	colour := b.at(p)
	if colour == Empty {
		return 0
	}

	caps := 0
	b.state[p.x][p.y] = Empty
	stack := []point{p}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		caps++

		for _, n := range b.neighbours(cur) {
			if b.at(n) == colour {
				b.state[n.x][n.y] = Empty
				stack = append(stack, n)
			}
		}
	}

	if colour == Black {
		b.CapsByW += caps
	} else {
		b.CapsByB += caps
	}
	return caps
}

// LegalMove checks s for the colour to move. Passes are not legal moves.
func (b *Board) LegalMove(s string) bool {
	return b.LegalMoveColour(s, b.Active)
}

func (b *Board) LegalMoveColour(s string, colour Colour) bool {
	if colour != Black && colour != White {
		return false
	}
	p, err := b.parse(s)
	if err != nil {
		return false
	}
	if b.at(p) != Empty || b.Ko == s {
		return false
	}

	neighbours := b.neighbours(p)
	for _, n := range neighbours {
		if b.at(n) == Empty {
			return true
		}
	}

	opposite := colour.Opposite()
	for _, n := range neighbours {
		switch b.at(n) {
		case colour:
			if b.hasLiberties(n, map[point]bool{p: true}) {
				return true
			}
		case opposite:
			if !b.hasLiberties(n, map[point]bool{p: true}) {
				return true
			}
		}
	}

	// suicide
	return false
}

// PlayMoveOrPass plays s for colour without a legality check. Anything that
// is not an on-board coordinate is a pass.
func (b *Board) PlayMoveOrPass(s string, colour Colour) {
	b.Ko = ""
	b.Active = colour.Opposite()

	p, err := b.parse(s)
	if err != nil {
		return
	}

	b.state[p.x][p.y] = colour
	caps := 0

	for _, n := range b.neighbours(p) {
		c := b.at(n)
		if c != Empty && c != colour && !b.hasLiberties(n, map[point]bool{}) {
			caps += b.destroyGroup(n)
		}
	}

	if !b.hasLiberties(p, map[point]bool{}) {
		b.destroyGroup(p)
	}

	if caps == 1 {
		if lib, ok := b.oneLibertySingleton(p); ok {
			b.Ko = lib.String()
		}
	}
}

// oneLibertySingleton returns the only liberty of a stone with no friendly
// neighbours.
func (b *Board) oneLibertySingleton(p point) (point, bool) {
	colour := b.at(p)
	if colour == Empty {
		return point{}, false
	}

	var lib point
	liberties := 0
	for _, n := range b.neighbours(p) {
		switch b.at(n) {
		case colour:
			return point{}, false
		case Empty:
			lib = n
			liberties++
		}
	}
	return lib, liberties == 1
}
