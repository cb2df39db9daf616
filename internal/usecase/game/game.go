package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gofish/internal/domain/game"
	"gofish/internal/domain/sgf"
	errs "gofish/internal/errors"
)

const unknownDyer = "????????????"

type GameStore interface {
	SaveSGF(ctx context.Context, id string, sgfText string) error
	LoadSGF(ctx context.Context, id string) (string, error)
	PutGame(ctx context.Context, gameData game.Game) error
	GetGame(ctx context.Context, id string) (game.Game, error)
	FindByDyer(ctx context.Context, dyer string) ([]game.Game, error)
	ListGames(ctx context.Context, pageNum int) (*game.GamesPage, error)
}

type GameUseCase struct {
	store GameStore
	log   *zap.SugaredLogger

	// moveLocks holds a *sync.Mutex per game id. PlayMove is a
	// load-modify-save of the whole tree and must not interleave.
	moveLocks sync.Map
}

func NewGameUseCase(store GameStore, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{store: store, log: log}
}

// Summarize collects the archive metadata of the tree containing node.
func Summarize(node *sgf.Node) game.Game {
	root := node.Root()

	moves := 0
	for n := root; ; n = n.Children()[0] {
		if _, _, ok := n.MoveValue(); ok {
			moves++
		}
		if len(n.Children()) == 0 {
			break
		}
	}

	boardSize := root.Get("SZ")
	if boardSize == "" {
		boardSize = fmt.Sprint(sgf.DefaultBoardSize)
	}

	return game.Game{
		BoardSize:   boardSize,
		Komi:        root.Get("KM"),
		Handicap:    root.Get("HA"),
		Rules:       root.Get("RU"),
		PlayerBlack: root.Get("PB"),
		PlayerWhite: root.Get("PW"),
		Date:        root.Get("DT"),
		Result:      root.Get("RE"),
		MoveCount:   moves,
		NodeCount:   root.SubtreeSize(),
		Dyer:        root.Dyer(),
	}
}

// ImportRecord parses a game record and archives every game found in it.
func (g *GameUseCase) ImportRecord(ctx context.Context, filename string, buf []byte) ([]game.Game, error) {
	roots, err := LoadBytes(filename, buf)
	if err != nil {
		g.log.Errorw("failed to parse game record", "filename", filename, "error", err)
		return nil, err
	}

	imported := make([]game.Game, 0, len(roots))
	for _, root := range roots {
		record, err := g.archive(ctx, filename, root)
		if err != nil {
			return imported, err
		}
		imported = append(imported, record)
	}

	g.log.Infof("imported %d game(s) from %s", len(imported), filename)
	return imported, nil
}

func (g *GameUseCase) archive(ctx context.Context, filename string, root *sgf.Node) (game.Game, error) {
	record := Summarize(root)
	record.ID = uuid.New().String()
	record.Filename = filepath.Base(filename)
	record.Format = Format(filename)
	record.CreatedAt = time.Now()

	if record.Dyer != unknownDyer {
		known, err := g.store.FindByDyer(ctx, record.Dyer)
		if err != nil {
			return game.Game{}, fmt.Errorf("failed to look up dyer %s: %w", record.Dyer, err)
		}
		for _, k := range known {
			record.Duplicates = append(record.Duplicates, k.ID)
		}
	}

	if err := g.store.SaveSGF(ctx, record.ID, SerializeSGF(root)); err != nil {
		return game.Game{}, fmt.Errorf("failed to save sgf: %w", err)
	}
	if err := g.store.PutGame(ctx, record); err != nil {
		return game.Game{}, fmt.Errorf("failed to save game: %w", err)
	}
	return record, nil
}

// ImportDirectory archives every record file below dir. Files that fail to
// parse are logged and skipped.
func (g *GameUseCase) ImportDirectory(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsRecordFile(d.Name()) {
			return nil
		}

		buf, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		imported, err := g.ImportRecord(ctx, path, buf)
		if err != nil {
			if errors.Is(err, errs.ErrParseFailed) {
				g.log.Warnw("skipping unreadable record", "path", path, "error", err)
				return nil
			}
			return err
		}
		count += len(imported)
		return nil
	})
	return count, err
}

func (g *GameUseCase) GetGame(ctx context.Context, id string) (game.Game, error) {
	return g.store.GetGame(ctx, id)
}

func (g *GameUseCase) GetSGF(ctx context.Context, id string) (string, error) {
	return g.store.LoadSGF(ctx, id)
}

func (g *GameUseCase) FindDuplicates(ctx context.Context, dyer string) ([]game.Game, error) {
	return g.store.FindByDyer(ctx, dyer)
}

func (g *GameUseCase) ListGames(ctx context.Context, pageNum int) (*game.GamesPage, error) {
	if pageNum < 1 {
		pageNum = 1
	}
	return g.store.ListGames(ctx, pageNum)
}

// LoadTree reads back the stored tree of an archived game.
func (g *GameUseCase) LoadTree(ctx context.Context, id string) (*sgf.Node, error) {
	sgfText, err := g.store.LoadSGF(ctx, id)
	if err != nil {
		return nil, err
	}
	roots, err := LoadSGF([]byte(sgfText))
	if err != nil {
		return nil, fmt.Errorf("stored game %s is corrupt: %w", id, err)
	}
	return roots[0], nil
}

// GameState describes the position at the end of a stored game's main line.
func (g *GameUseCase) GameState(ctx context.Context, id string) (game.GameStateResponse, error) {
	root, err := g.LoadTree(ctx, id)
	if err != nil {
		return game.GameStateResponse{}, err
	}

	end := root.End()
	resp := game.GameStateResponse{
		GameID: id,
		SGF:    SerializeSGF(root),
		Board:  NewBoardState(end.MakeBoard()),
	}
	if colour, s, ok := end.MoveValue(); ok {
		resp.Move = game.Move{Color: colour.Key(), Coordinates: s}
	}
	return resp, nil
}

// PlayMove extends the main line of a stored game by one move or pass and
// saves the result. An empty or "pass" coordinate passes.
func (g *GameUseCase) PlayMove(ctx context.Context, id string, move game.Move) (game.GameStateResponse, error) {
	lock := g.moveLock(id)
	lock.Lock()
	defer lock.Unlock()

	root, err := g.LoadTree(ctx, id)
	if err != nil {
		return game.GameStateResponse{}, err
	}

	end := root.End()
	active := end.MakeBoard().Active
	if move.Color != "" && !strings.EqualFold(move.Color, active.String()) && !strings.EqualFold(move.Color, active.Key()) {
		return game.GameStateResponse{}, fmt.Errorf("%w: %s is not to play", errs.ErrIllegalMove, move.Color)
	}

	var next *sgf.Node
	coordinates := strings.TrimSpace(move.Coordinates)
	if coordinates == "" || strings.EqualFold(coordinates, "pass") {
		next = end.MakePass()
	} else {
		next, err = end.MakeMove(coordinates)
		if err != nil {
			return game.GameStateResponse{}, err
		}
	}

	sgfText := SerializeSGF(root)
	if err := g.store.SaveSGF(ctx, id, sgfText); err != nil {
		return game.GameStateResponse{}, fmt.Errorf("failed to save sgf: %w", err)
	}
	g.log.Infof("game %s: %s played %q", id, active.Key(), next.Get(active.Key()))

	return game.GameStateResponse{
		GameID: id,
		Move:   game.Move{Color: active.Key(), Coordinates: next.Get(active.Key())},
		SGF:    sgfText,
		Board:  NewBoardState(next.MakeBoard()),
	}, nil
}

func (g *GameUseCase) moveLock(id string) *sync.Mutex {
	lock, _ := g.moveLocks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func NewBoardState(b *sgf.Board) game.BoardState {
	state := game.BoardState{
		Width:   b.Width,
		Height:  b.Height,
		Ko:      b.Ko,
		Active:  b.Active.Key(),
		CapsByB: b.CapsByB,
		CapsByW: b.CapsByW,
		Stones:  make([][]int, b.Height),
	}
	for y := 0; y < b.Height; y++ {
		state.Stones[y] = make([]int, b.Width)
		for x := 0; x < b.Width; x++ {
			s, _ := sgf.XYToS(x, y)
			c, _ := b.StateAt(s)
			state.Stones[y][x] = int(c)
		}
	}
	return state
}
