package game

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	errs "gofish/internal/errors"
)

const gibRecord = `\HS
\[GAMEINFOMAIN=GBKIND:3,GTYPE:0,GCDT:2011-03-26\]
\[GAMETAG=S1,R3,D0,A:WhiteName,B:BlackName,G65,W4,Z0,T30-3-1200,C2011:03:26:12:34,I:x\]
\HE
\GS
2 1 0
119 0 &4
INI 0 1 3 &4
STO 0 2 1 15 3
STO 0 3 2 3 15
STO 0 4 1 99 16
STO 0 5 1 16 16
\GE
`

func TestLoadGIB(t *testing.T) {
	roots, err := LoadGIB([]byte(strings.ReplaceAll(gibRecord, "\n", "\r\n")))
	if err != nil {
		t.Fatalf("LoadGIB: %v", err)
	}
	root := roots[0]

	wantKeys := []string{"SZ", "RU", "KM", "DT", "RE", "PB", "PW", "HA", "AB"}
	if !reflect.DeepEqual(root.Keys(), wantKeys) {
		t.Errorf("Keys = %v, want %v", root.Keys(), wantKeys)
	}
	props := map[string]string{
		"SZ": "19",
		"KM": "6.5",
		"DT": "2011-03-26",
		"RE": "W+R",
		"PB": "BlackName",
		"PW": "WhiteName",
		"HA": "3",
	}
	for key, want := range props {
		if got := root.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if got := root.AllValues("AB"); !reflect.DeepEqual(got, []string{"dp", "pd", "dd"}) {
		t.Errorf("AB = %v", got)
	}

	// the off-board STO line is dropped without a node
	var moves []string
	for n := root; len(n.Children()) > 0; {
		n = n.Children()[0]
		c, s, _ := n.MoveValue()
		moves = append(moves, c.Key()+":"+s)
	}
	want := []string{"B:pd", "W:dp", "B:qq"}
	if !reflect.DeepEqual(moves, want) {
		t.Errorf("moves = %v, want %v", moves, want)
	}
}

func TestLoadGIBErrors(t *testing.T) {
	noMoves := `\[GAMETAG=G65,W4,I:x\]` + "\nINI 0 1 0 &4\n"
	if _, err := LoadGIB([]byte(noMoves)); !errors.Is(err, errs.ErrParseFailed) || !strings.Contains(err.Error(), "got no moves") {
		t.Errorf("no moves: error = %v", err)
	}

	lateINI := "STO 0 2 1 15 3\nINI 0 1 2 &4\n"
	if _, err := LoadGIB([]byte(lateINI)); !errors.Is(err, errs.ErrParseFailed) || !strings.Contains(err.Error(), "INI after moves") {
		t.Errorf("late INI: error = %v", err)
	}
}

func TestParseGIBGameTag(t *testing.T) {
	tests := []struct {
		line   string
		result string
		komi   string
	}{
		{`\[GAMETAG=S1,W0,Z35,G0,I:x\]`, "B+3.5", "0"},
		{`\[GAMETAG=S1,W1,Z30,G75,I:x\]`, "W+3.0", "7.5"},
		{`\[GAMETAG=S1,W3,Z30,I:x\]`, "B+R", ""},
		{`\[GAMETAG=S1,W8,I:x\]`, "W+T", ""},
		{`\[GAMETAG=S1,W1,W9,I:x\]`, "W+", ""},
		{`\[GAMETAG=S1,W9,I:x\]`, "", ""},
		{`\[GAMETAG=W0,Z35,I:x\]`, "", ""},
	}
	for _, tt := range tests {
		info := parseGIBGameTag(tt.line)
		if info.result != tt.result || info.komi != tt.komi {
			t.Errorf("parseGIBGameTag(%q) = result %q komi %q, want %q %q",
				tt.line, info.result, info.komi, tt.result, tt.komi)
		}
	}
}
