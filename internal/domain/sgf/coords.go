package sgf

import (
	"fmt"
	"strconv"
	"strings"

	errs "gofish/internal/errors"
)

// MaxBoardSize is the largest board a two-letter coordinate can address.
const MaxBoardSize = 52

func letterToCoordinate(letter byte) (int, bool) {
	switch {
	case letter >= 'a' && letter <= 'z':
		return int(letter - 'a'), true
	case letter >= 'A' && letter <= 'Z':
		return int(letter-'A') + 26, true
	}
	return 0, false
}

func coordinateToLetter(coordinate int) byte {
	if coordinate < 26 {
		return byte(coordinate) + 'a'
	}
	return byte(coordinate-26) + 'A'
}

// SToXY converts a compact coordinate such as "cc" into (2, 2).
func SToXY(s string) (x, y int, err error) {
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("%w: %q has wrong length", errs.ErrInvalidCoordinate, s)
	}
	x, okX := letterToCoordinate(s[0])
	y, okY := letterToCoordinate(s[1])
	if !okX || !okY {
		return 0, 0, fmt.Errorf("%w: %q has bad characters", errs.ErrInvalidCoordinate, s)
	}
	return x, y, nil
}

// XYToS is the inverse of SToXY.
func XYToS(x, y int) (string, error) {
	if x < 0 || x >= MaxBoardSize || y < 0 || y >= MaxBoardSize {
		return "", fmt.Errorf("%w: (%d, %d) out of range", errs.ErrInvalidCoordinate, x, y)
	}
	return string([]byte{coordinateToLetter(x), coordinateToLetter(y)}), nil
}

// EnglishToXY parses a letter-number coordinate like "Q16". Rows count from
// the bottom edge, so on a 19x19 board "Q16" is (15, 3). With skipI the
// column letters jump from H to J.
func EnglishToXY(e string, height int, skipI bool) (x, y int, err error) {
	if len(e) != 2 && len(e) != 3 {
		return 0, 0, fmt.Errorf("%w: %q has wrong length", errs.ErrInvalidCoordinate, e)
	}
	e = strings.ToUpper(e)

	col := e[0]
	if col < 'A' || col > 'Z' {
		return 0, 0, fmt.Errorf("%w: bad column in %q", errs.ErrInvalidCoordinate, e)
	}
	x = int(col - 'A')
	if skipI {
		if col == 'I' {
			return 0, 0, fmt.Errorf("%w: column I is not used", errs.ErrInvalidCoordinate)
		}
		if x > 7 {
			x--
		}
	}

	row, err := strconv.Atoi(e[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad row in %q", errs.ErrInvalidCoordinate, e)
	}
	y = height - row
	if y < 0 || y >= height {
		return 0, 0, fmt.Errorf("%w: row of %q off board", errs.ErrInvalidCoordinate, e)
	}
	return x, y, nil
}

// XYToEnglish produces the letter-number form used by GTP engines, skipping I.
func XYToEnglish(x, y, height int) (string, error) {
	if x < 0 || x >= 25 || y < 0 || y >= height {
		return "", fmt.Errorf("%w: (%d, %d) has no english form", errs.ErrInvalidCoordinate, x, y)
	}
	col := 'A' + rune(x)
	if col >= 'I' {
		col++
	}
	return fmt.Sprintf("%c%d", col, height-y), nil
}

// SToEnglish converts "cc" to "C17" on a 19 line board.
func SToEnglish(s string, height int) (string, error) {
	x, y, err := SToXY(s)
	if err != nil {
		return "", err
	}
	return XYToEnglish(x, y, height)
}
