package game

import (
	"bytes"
	"strconv"
	"strings"

	"gofish/internal/domain/sgf"
	errs "gofish/internal/errors"
)

const (
	formatNGF = "NGF"

	// unknownGlyph marks names the exporting client could not encode.
	unknownGlyph = "�"

	ngfMinLines       = 12
	ngfCoordinateBase = 'B'
)

// NGF header lines, by index.
const (
	ngfLineBoardSize = 1
	ngfLineWhite     = 2
	ngfLineBlack     = 3
	ngfLineHandicap  = 5
	ngfLineKomi      = 7
	ngfLineDate      = 8
	ngfLineResult    = 10
)

func splitLines(buf []byte) []string {
	raw := bytes.Split(buf, []byte("\n"))
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimSpace(decodeValue(l)))
	}
	return lines
}

func firstField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.Contains(fields[0], unknownGlyph) {
		return ""
	}
	return fields[0]
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// LoadNGF reads a WBaduk NGF record.
func LoadNGF(buf []byte) ([]*sgf.Node, error) {
	lines := splitLines(buf)
	if len(lines) < ngfMinLines {
		return nil, errs.NewParseError(formatNGF, "file too short")
	}

	boardSize, err := strconv.Atoi(lines[ngfLineBoardSize])
	if err != nil {
		boardSize = sgf.DefaultBoardSize
	}

	pw := firstField(lines[ngfLineWhite])
	pb := firstField(lines[ngfLineBlack])

	handicap, err := strconv.Atoi(lines[ngfLineHandicap])
	if err != nil {
		handicap = 0
	}
	if handicap < 0 || handicap > 9 {
		return nil, errs.NewParseError(formatNGF, "bad handicap")
	}

	komi, err := strconv.ParseFloat(lines[ngfLineKomi], 64)
	if err != nil {
		komi = 0
	} else if komi == float64(int64(komi)) {
		komi += 0.5
	}

	rawDate := ""
	if len(lines[ngfLineDate]) >= 8 {
		rawDate = lines[ngfLineDate][:8]
	}

	re := ngfResult(lines[ngfLineResult])

	root := sgf.NewTree()
	root.Set("SZ", strconv.Itoa(boardSize))
	root.Set("RU", "Korean")
	root.Set("KM", formatNumber(komi))

	if handicap > 1 {
		root.Set("HA", strconv.Itoa(handicap))
		for _, s := range sgf.HandicapStones(handicap, boardSize, boardSize, true) {
			root.AddValue("AB", s)
		}
	}

	if isDigits(rawDate) && len(rawDate) == 8 {
		root.Set("DT", rawDate[0:4]+"-"+rawDate[4:6]+"-"+rawDate[6:8])
	}
	if pw != "" {
		root.Set("PW", pw)
	}
	if pb != "" {
		root.Set("PB", pb)
	}
	if re != "" {
		root.Set("RE", re)
	}

	node := root
	for _, line := range lines {
		line = strings.ToUpper(line)
		if len(line) < 7 || line[0:2] != "PM" {
			continue
		}
		if line[4] != 'B' && line[4] != 'W' {
			continue
		}

		key := line[4:5]
		x := int(line[5]) - ngfCoordinateBase
		y := int(line[6]) - ngfCoordinateBase

		node = node.NewChild()
		if x >= 0 && x < boardSize && y >= 0 && y < boardSize {
			s, err := sgf.XYToS(x, y)
			if err != nil {
				s = ""
			}
			node.Set(key, s)
		} else {
			node.Set(key, "")
		}
	}

	if len(root.Children()) == 0 {
		return nil, errs.NewParseError(formatNGF, "got no moves")
	}
	return []*sgf.Node{root}, nil
}

func ngfResult(line string) string {
	lower := strings.ToLower(line)

	re := ""
	if strings.Contains(lower, "black win") || strings.Contains(lower, "white los") {
		re = "B+"
	}
	if strings.Contains(lower, "white win") || strings.Contains(lower, "black los") {
		re = "W+"
	}
	if re == "" {
		return ""
	}

	switch {
	case strings.Contains(lower, "time"):
		re += "T"
	case strings.Contains(lower, "resign"):
		re += "R"
	}
	return re
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
