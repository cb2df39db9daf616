package katago

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gofish/internal/domain/game"
	"gofish/internal/domain/sgf"
	errs "gofish/internal/errors"
)

const analyzeCommand = "kata-analyze interval 10"

// Engine is a GTP connection. Send returns the ID the command was numbered
// with; Receive returns each output line with the ID of the response it
// belongs to.
type Engine interface {
	Send(cmd string) (int, error)
	Receive() (int, string, error)
}

type Analyzer struct {
	engine Engine
	log    *zap.SugaredLogger
}

func NewAnalyzer(engine Engine, log *zap.SugaredLogger) *Analyzer {
	return &Analyzer{engine: engine, log: log}
}

// Analyze replays the main line below root into the engine. After each node
// it lets the engine think until more than minVisits visits are reported and
// records the engine's preferred move. Only the root's setup stones are
// sent, as plays before the first analysis.
func (a *Analyzer) Analyze(ctx context.Context, root *sgf.Node, minVisits int) ([]game.MoveAnalysis, error) {
	width, height := root.Width(), root.Height()

	if err := a.setup(root, width, height); err != nil {
		return nil, err
	}

	var results []game.MoveAnalysis
	for node, ply := root, 0; ; ply++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		played := ""
		if colour, s, ok := node.MoveValue(); ok {
			played = gtpVertex(s, height)
			if _, err := a.engine.Send(fmt.Sprintf("play %s %s", colour, played)); err != nil {
				return results, err
			}
		}

		analysis, err := a.think(ctx, minVisits)
		if err != nil {
			return results, err
		}
		analysis.Ply = ply
		analysis.Move = played
		results = append(results, analysis)

		a.log.Infof("node %d: total visits %d, best move %s", ply, analysis.Visits, analysis.BestMove)

		if len(node.Children()) == 0 {
			break
		}
		node = node.Children()[0]
	}

	return results, nil
}

func (a *Analyzer) setup(root *sgf.Node, width, height int) error {
	cmds := []string{fmt.Sprintf("boardsize %d", width)}
	if width != height {
		cmds[0] = fmt.Sprintf("rectangular_boardsize %d %d", width, height)
	}
	cmds = append(cmds, "clear_board")
	if komi, err := strconv.ParseFloat(root.Get("KM"), 64); err == nil {
		cmds = append(cmds, "komi "+strconv.FormatFloat(komi, 'f', -1, 64))
	}

	for _, stones := range []struct {
		colour sgf.Colour
		key    string
	}{{sgf.Black, "AB"}, {sgf.White, "AW"}} {
		for _, s := range root.AllValues(stones.key) {
			if v := gtpVertex(s, height); v != "pass" {
				cmds = append(cmds, fmt.Sprintf("play %s %s", stones.colour, v))
			}
		}
	}

	for _, cmd := range cmds {
		if _, err := a.engine.Send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// think starts an analysis and reads its output until enough visits have
// accumulated. Lines answering earlier commands are skipped.
func (a *Analyzer) think(ctx context.Context, minVisits int) (game.MoveAnalysis, error) {
	id, err := a.engine.Send(analyzeCommand)
	if err != nil {
		return game.MoveAnalysis{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return game.MoveAnalysis{}, err
		}

		responseID, line, err := a.engine.Receive()
		if err != nil {
			return game.MoveAnalysis{}, err
		}
		if responseID != id {
			continue
		}
		if strings.HasPrefix(line, "?") {
			return game.MoveAnalysis{}, fmt.Errorf("%w: %s: %s", errs.ErrEngineRejected, analyzeCommand, line)
		}

		visits, best := parseAnalysis(line)
		if visits > minVisits {
			return game.MoveAnalysis{Visits: visits, BestMove: best}, nil
		}
	}
}

// parseAnalysis sums the visits of every candidate in one kata-analyze line
// and returns the first candidate's move.
func parseAnalysis(line string) (visits int, best string) {
	for _, info := range strings.Split(line, "info") {
		tokens := strings.Split(info, " ")

		if i := slices.Index(tokens, "visits"); i >= 0 && i+1 < len(tokens) {
			if v, err := strconv.Atoi(tokens[i+1]); err == nil {
				visits += v
			}
		}
		if best == "" {
			if i := slices.Index(tokens, "move"); i >= 0 && i+1 < len(tokens) {
				best = tokens[i+1]
			}
		}
	}
	return visits, best
}

// gtpVertex converts an SGF point to GTP notation. Passes and points GTP
// cannot express become "pass".
func gtpVertex(s string, height int) string {
	e, err := sgf.SToEnglish(s, height)
	if err != nil {
		return "pass"
	}
	return e
}
