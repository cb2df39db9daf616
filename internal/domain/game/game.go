package game

import (
	"time"
)

// Game is the archive record of one imported game tree. The SGF text itself
// lives in Redis under the same ID.
type Game struct {
	ID          string    `json:"id" bson:"_id" yaml:"id,omitempty"`
	Filename    string    `json:"filename" bson:"filename" yaml:"filename,omitempty"`
	Format      string    `json:"format" bson:"format" yaml:"format"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"-"`
	BoardSize   string    `json:"board_size" bson:"board_size" yaml:"board_size"`
	Komi        string    `json:"komi" bson:"komi" yaml:"komi,omitempty"`
	Handicap    string    `json:"handicap,omitempty" bson:"handicap,omitempty" yaml:"handicap,omitempty"`
	Rules       string    `json:"rules,omitempty" bson:"rules,omitempty" yaml:"rules,omitempty"`
	PlayerBlack string    `json:"player_black" bson:"player_black" yaml:"player_black,omitempty"`
	PlayerWhite string    `json:"player_white" bson:"player_white" yaml:"player_white,omitempty"`
	Date        string    `json:"date" bson:"date" yaml:"date,omitempty"`
	Result      string    `json:"result" bson:"result" yaml:"result,omitempty"`
	MoveCount   int       `json:"move_count" bson:"move_count" yaml:"move_count"`
	NodeCount   int       `json:"node_count" bson:"node_count" yaml:"node_count"`
	Dyer        string    `json:"dyer" bson:"dyer" yaml:"dyer"`
	Duplicates  []string  `json:"duplicates,omitempty" bson:"-" yaml:"duplicates,omitempty"`
}

type GamesPage struct {
	PageNum    int    `json:"page_num"`
	TotalPages int    `json:"total_pages"`
	Games      []Game `json:"games"`
}

// @name Move
type Move struct {
	Color       string `json:"color"`
	Coordinates string `json:"coordinates"`
}

// BoardState is a position as sent to clients.
// Stones is indexed [y][x] with 0 empty, 1 black, 2 white.
type BoardState struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Stones  [][]int `json:"stones"`
	Ko      string  `json:"ko,omitempty"`
	Active  string  `json:"active"`
	CapsByB int     `json:"caps_by_b"`
	CapsByW int     `json:"caps_by_w"`
}

type GameStateResponse struct {
	GameID string     `json:"game_id"`
	Move   Move       `json:"move"`
	SGF    string     `json:"sgf"`
	Board  BoardState `json:"board"`
}

// MoveAnalysis is what the analysis engine reported after one main line node.
type MoveAnalysis struct {
	Ply      int    `json:"ply" yaml:"ply"`
	Move     string `json:"move,omitempty" yaml:"move,omitempty"`
	Visits   int    `json:"visits" yaml:"visits"`
	BestMove string `json:"best_move" yaml:"best_move"`
}
