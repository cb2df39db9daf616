package game

import (
	"strconv"
	"strings"

	"gofish/internal/domain/sgf"
	errs "gofish/internal/errors"
)

const (
	formatGIB = "GIB"

	gibGameTag   = `\[GAMETAG=`
	gibBoardSize = 19
)

// gibResults maps the GAMETAG W field onto RE values.
var gibResults = map[int]string{
	0: "B+",
	1: "W+",
	3: "B+R",
	4: "W+R",
	7: "B+T",
	8: "W+T",
}

type gibGameInfo struct {
	date   string
	result string
	komi   string
	black  string
	white  string
}

// LoadGIB reads a Tygem GIB record. GIB games are always 19x19.
func LoadGIB(buf []byte) ([]*sgf.Node, error) {
	root := sgf.NewTree()
	node := root

	root.Set("SZ", strconv.Itoa(gibBoardSize))
	root.Set("RU", "Korean")
	root.Set("KM", "0")

	for _, line := range splitLines(buf) {
		if strings.HasPrefix(line, gibGameTag) {
			info := parseGIBGameTag(line)
			if info.date != "" {
				root.Set("DT", info.date)
			}
			if info.result != "" {
				root.Set("RE", info.result)
			}
			if info.komi != "" {
				root.Set("KM", info.komi)
			}
			if info.black != "" && !strings.Contains(info.black, unknownGlyph) {
				root.Set("PB", info.black)
			}
			if info.white != "" && !strings.Contains(info.white, unknownGlyph) {
				root.Set("PW", info.white)
			}
		}

		fields := strings.Fields(line)

		if len(fields) >= 4 && fields[0] == "INI" {
			if node != root {
				return nil, errs.NewParseError(formatGIB, "got INI after moves were made")
			}
			if handicap, err := strconv.Atoi(fields[3]); err == nil && handicap > 1 {
				root.Set("HA", strconv.Itoa(handicap))
				for _, s := range sgf.HandicapStones(handicap, gibBoardSize, gibBoardSize, true) {
					root.AddValue("AB", s)
				}
			}
		}

		if len(fields) >= 6 && fields[0] == "STO" {
			x, errX := strconv.Atoi(fields[4])
			y, errY := strconv.Atoi(fields[5])
			if errX != nil || errY != nil {
				continue
			}
			s, err := sgf.XYToS(x, y)
			if err != nil {
				continue
			}
			key := "B"
			if fields[3] == "2" {
				key = "W"
			}
			node = node.NewChild()
			node.Set(key, s)
		}
	}

	if len(root.Children()) == 0 {
		return nil, errs.NewParseError(formatGIB, "got no moves")
	}
	return []*sgf.Node{root}, nil
}

func parseGIBGameTag(line string) gibGameInfo {
	var info gibGameInfo
	margin := 0

	for _, s := range strings.Split(line, ",") {
		s = strings.TrimSpace(s)
		if len(s) < 2 {
			continue
		}

		switch {
		case strings.HasPrefix(s, "A:"):
			info.white = s[2:]
		case strings.HasPrefix(s, "B:"):
			info.black = s[2:]
		}

		switch s[0] {
		case 'C':
			date := s[1:]
			if len(date) > 10 {
				date = date[:10]
			}
			info.date = strings.ReplaceAll(date, ":", "-")
		case 'W':
			if code, err := strconv.Atoi(s[1:]); err == nil {
				if re, ok := gibResults[code]; ok {
					info.result = re
				}
			}
		case 'G':
			if tenths, err := strconv.Atoi(s[1:]); err == nil {
				info.komi = formatNumber(float64(tenths) / 10)
			}
		case 'Z':
			if zipsu, err := strconv.Atoi(s[1:]); err == nil {
				margin = zipsu
			}
		}
	}

	if (info.result == "B+" || info.result == "W+") && margin > 0 {
		m := formatNumber(float64(margin) / 10)
		if !strings.Contains(m, ".") {
			m += ".0"
		}
		info.result += m
	}
	return info
}
