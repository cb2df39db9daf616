// Package sgf holds the game tree of an SGF record and the board it
// describes.
//
// A tree is made of Nodes, each an ordered list of properties such as
// B[pd] or AB[aa][bb]. The position at any node is built by replaying the
// setup and moves from the root and is cached on the node until one of the
// properties that shape the board changes above it. Points are written in
// SGF form, two letters a-z then A-Z, column first.
package sgf
