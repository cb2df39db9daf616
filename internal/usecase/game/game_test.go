package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"gofish/internal/domain/game"
	"gofish/internal/domain/sgf"
	errs "gofish/internal/errors"
)

type memoryStore struct {
	sgfs  map[string]string
	games map[string]game.Game
	order []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sgfs: map[string]string{}, games: map[string]game.Game{}}
}

func (m *memoryStore) SaveSGF(_ context.Context, id string, sgfText string) error {
	m.sgfs[id] = sgfText
	return nil
}

func (m *memoryStore) LoadSGF(_ context.Context, id string) (string, error) {
	text, ok := m.sgfs[id]
	if !ok {
		return "", errs.ErrGameNotFound
	}
	return text, nil
}

func (m *memoryStore) PutGame(_ context.Context, gameData game.Game) error {
	if _, ok := m.games[gameData.ID]; !ok {
		m.order = append(m.order, gameData.ID)
	}
	m.games[gameData.ID] = gameData
	return nil
}

func (m *memoryStore) GetGame(_ context.Context, id string) (game.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return g, nil
}

func (m *memoryStore) FindByDyer(_ context.Context, dyer string) ([]game.Game, error) {
	var found []game.Game
	for _, id := range m.order {
		if m.games[id].Dyer == dyer {
			found = append(found, m.games[id])
		}
	}
	return found, nil
}

func (m *memoryStore) ListGames(_ context.Context, pageNum int) (*game.GamesPage, error) {
	page := &game.GamesPage{PageNum: pageNum, TotalPages: 1}
	for _, id := range m.order {
		page.Games = append(page.Games, m.games[id])
	}
	return page, nil
}

func newTestUseCase() (*GameUseCase, *memoryStore) {
	store := newMemoryStore()
	return NewGameUseCase(store, zap.NewNop().Sugar()), store
}

func longGame() string {
	var sb strings.Builder
	sb.WriteString("(;SZ[19]PB[Black]PW[White]RE[B+R]")
	for i := 0; i < 80; i++ {
		s, _ := sgf.XYToS(i%19, i/19)
		key := "B"
		if i%2 == 1 {
			key = "W"
		}
		sb.WriteString(";" + key + "[" + s + "]")
	}
	sb.WriteString(")")
	return sb.String()
}

func TestSummarize(t *testing.T) {
	root := mustLoadSGF(t, "(;KM[6.5]PB[Lee]PW[Cho];B[ee](;W[gc];B[])(;W[cc]))")[0]
	g := Summarize(root.End())

	if g.BoardSize != "19" || g.Komi != "6.5" || g.PlayerBlack != "Lee" || g.PlayerWhite != "Cho" {
		t.Errorf("Summarize = %+v", g)
	}
	if g.MoveCount != 3 || g.NodeCount != 5 {
		t.Errorf("MoveCount = %d, NodeCount = %d, want 3 and 5", g.MoveCount, g.NodeCount)
	}
	if g.Dyer != unknownDyer {
		t.Errorf("Dyer = %q", g.Dyer)
	}
}

func TestImportRecord(t *testing.T) {
	uc, store := newTestUseCase()
	ctx := context.Background()

	imported, err := uc.ImportRecord(ctx, "dir/two.sgf", []byte("(;SZ[9];B[ee])(;SZ[13];W[cc])"))
	if err != nil {
		t.Fatalf("ImportRecord: %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("imported %d games, want 2", len(imported))
	}
	first := imported[0]
	if first.Filename != "two.sgf" || first.Format != "SGF" || first.BoardSize != "9" {
		t.Errorf("first = %+v", first)
	}
	if store.sgfs[first.ID] != "(;SZ[9];B[ee])" {
		t.Errorf("stored sgf = %q", store.sgfs[first.ID])
	}

	if _, err := uc.ImportRecord(ctx, "bad.sgf", []byte("garbage")); !errors.Is(err, errs.ErrParseFailed) {
		t.Errorf("bad record error = %v", err)
	}
}

func TestImportRecordDuplicates(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	first, err := uc.ImportRecord(ctx, "a.sgf", []byte(longGame()))
	if err != nil {
		t.Fatalf("ImportRecord: %v", err)
	}
	if first[0].Dyer != "abbccdlbmcnd" || len(first[0].Duplicates) != 0 {
		t.Fatalf("first import = %q %v", first[0].Dyer, first[0].Duplicates)
	}

	second, err := uc.ImportRecord(ctx, "b.sgf", []byte(longGame()))
	if err != nil {
		t.Fatalf("ImportRecord: %v", err)
	}
	if len(second[0].Duplicates) != 1 || second[0].Duplicates[0] != first[0].ID {
		t.Errorf("Duplicates = %v, want [%s]", second[0].Duplicates, first[0].ID)
	}

	found, err := uc.FindDuplicates(ctx, "abbccdlbmcnd")
	if err != nil || len(found) != 2 {
		t.Errorf("FindDuplicates = %d games, %v", len(found), err)
	}
}

func TestImportDirectory(t *testing.T) {
	uc, store := newTestUseCase()
	dir := t.TempDir()

	files := map[string]string{
		"a.sgf":      "(;SZ[9];B[ee])",
		"broken.ngf": "too short",
		"notes.txt":  "(;SZ[9];B[ee])",
		"sub/c.gib":  "STO 0 2 1 15 3\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := uc.ImportDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if count != 2 || len(store.games) != 2 {
		t.Errorf("imported %d games, stored %d, want 2", count, len(store.games))
	}
}

func TestPlayMove(t *testing.T) {
	uc, store := newTestUseCase()
	ctx := context.Background()

	imported, err := uc.ImportRecord(ctx, "g.sgf", []byte("(;SZ[9];B[ee])"))
	if err != nil {
		t.Fatal(err)
	}
	id := imported[0].ID

	resp, err := uc.PlayMove(ctx, id, game.Move{Coordinates: "gc"})
	if err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if resp.Move.Color != "W" || resp.Move.Coordinates != "gc" {
		t.Errorf("Move = %+v", resp.Move)
	}
	if resp.Board.Stones[2][6] != int(sgf.White) || resp.Board.Stones[4][4] != int(sgf.Black) {
		t.Error("board does not show both stones")
	}
	if resp.Board.Active != "B" {
		t.Errorf("Active = %q, want B", resp.Board.Active)
	}
	if store.sgfs[id] != "(;SZ[9];B[ee];W[gc])" {
		t.Errorf("stored sgf = %q", store.sgfs[id])
	}

	if _, err := uc.PlayMove(ctx, id, game.Move{Color: "W", Coordinates: "aa"}); !errors.Is(err, errs.ErrIllegalMove) {
		t.Errorf("out of turn error = %v", err)
	}
	if _, err := uc.PlayMove(ctx, id, game.Move{Coordinates: "ee"}); !errors.Is(err, errs.ErrIllegalMove) {
		t.Errorf("occupied point error = %v", err)
	}

	resp, err = uc.PlayMove(ctx, id, game.Move{Color: "b", Coordinates: "pass"})
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if resp.SGF != "(;SZ[9];B[ee];W[gc];B[])" || resp.Board.Active != "W" {
		t.Errorf("after pass sgf = %q, active = %q", resp.SGF, resp.Board.Active)
	}

	if _, err := uc.PlayMove(ctx, "missing", game.Move{}); !errors.Is(err, errs.ErrGameNotFound) {
		t.Errorf("missing game error = %v", err)
	}
}

// slowStore widens the gap between loading and saving a tree.
type slowStore struct {
	*memoryStore
	mu sync.Mutex
}

func (s *slowStore) LoadSGF(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	text, err := s.memoryStore.LoadSGF(ctx, id)
	s.mu.Unlock()
	time.Sleep(time.Millisecond)
	return text, err
}

func (s *slowStore) SaveSGF(ctx context.Context, id string, sgfText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoryStore.SaveSGF(ctx, id, sgfText)
}

func TestPlayMoveConcurrent(t *testing.T) {
	store := &slowStore{memoryStore: newMemoryStore()}
	uc := NewGameUseCase(store, zap.NewNop().Sugar())
	ctx := context.Background()

	imported, err := uc.ImportRecord(ctx, "g.sgf", []byte("(;SZ[19])"))
	if err != nil {
		t.Fatal(err)
	}
	id := imported[0].ID

	const players = 30
	var wg sync.WaitGroup
	failures := make(chan error, players)
	for i := 0; i < players; i++ {
		// No two points touch, so every move stays legal in any order.
		s, _ := sgf.XYToS(2*(i%10), 2*(i/10))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.PlayMove(ctx, id, game.Move{Coordinates: s}); err != nil {
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Errorf("PlayMove: %v", err)
	}

	root, err := uc.LoadTree(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got := root.SubtreeSize(); got != players+1 {
		t.Errorf("stored tree has %d nodes, want %d", got, players+1)
	}
	if got := len(root.End().History()); got != players+1 {
		t.Errorf("main line has %d nodes, want %d", got, players+1)
	}
}

func TestGameState(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	imported, err := uc.ImportRecord(ctx, "g.sgf", []byte("(;SZ[5]AB[bb];W[cc](;B[dd])(;B[aa]))"))
	if err != nil {
		t.Fatal(err)
	}

	state, err := uc.GameState(ctx, imported[0].ID)
	if err != nil {
		t.Fatalf("GameState: %v", err)
	}
	if state.Move.Color != "B" || state.Move.Coordinates != "dd" {
		t.Errorf("Move = %+v, want the main line's last move", state.Move)
	}
	if state.Board.Width != 5 || state.Board.Stones[1][1] != int(sgf.Black) || state.Board.Active != "W" {
		t.Errorf("Board = %+v", state.Board)
	}
}

func TestListGamesClampsPage(t *testing.T) {
	uc, _ := newTestUseCase()
	page, err := uc.ListGames(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.PageNum != 1 {
		t.Errorf("PageNum = %d, want 1", page.PageNum)
	}
}
