package sgf

// HandicapStones lists the standard handicap points for a board, in the
// order they are placed. The tygem flag selects Tygem's corner order.
func HandicapStones(count, width, height int, tygem bool) []string {
	if min(width, height) <= 6 || count < 2 {
		return nil
	}

	nearX, nearY := 2, 2
	if width >= 13 {
		nearX = 3
	}
	if height >= 13 {
		nearY = 3
	}
	farX := width - nearX - 1
	farY := height - nearY - 1
	middleX := (width - 1) / 2
	middleY := (height - 1) / 2

	var stones []point
	if tygem {
		stones = []point{{nearX, farY}, {farX, nearY}, {nearX, nearY}, {farX, farY}}
	} else {
		stones = []point{{nearX, farY}, {farX, nearY}, {farX, farY}, {nearX, nearY}}
	}

	if width%2 != 0 && height%2 != 0 && (width >= 9 || height >= 9) {
		if count == 5 || count == 7 || count >= 9 {
			stones = append(stones, point{middleX, middleY})
		}
		stones = append(stones,
			point{nearX, middleY},
			point{farX, middleY},
			point{middleX, nearY},
			point{middleX, farY},
		)
	}

	if count < len(stones) {
		stones = stones[:count]
	}

	ret := make([]string, 0, len(stones))
	for _, p := range stones {
		if s, err := XYToS(p.x, p.y); err == nil {
			ret = append(ret, s)
		}
	}
	return ret
}
