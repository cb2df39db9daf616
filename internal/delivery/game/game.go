package game

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gofish/internal/bootstrap"
	"gofish/internal/domain/game"
	"gofish/internal/httpresponse"
	"gofish/internal/utils"
)

const maxRecordSize = 8 << 20

type GameService interface {
	ImportRecord(ctx context.Context, filename string, buf []byte) ([]game.Game, error)
	ListGames(ctx context.Context, pageNum int) (*game.GamesPage, error)
	GetGame(ctx context.Context, id string) (game.Game, error)
	GetSGF(ctx context.Context, id string) (string, error)
	FindDuplicates(ctx context.Context, dyer string) ([]game.Game, error)
	GameState(ctx context.Context, id string) (game.GameStateResponse, error)
	PlayMove(ctx context.Context, id string, move game.Move) (game.GameStateResponse, error)
}

type GameHandler struct {
	cfg     *bootstrap.Config
	log     *zap.SugaredLogger
	gameUC  GameService
	streams *streamHub
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(cfg *bootstrap.Config, log *zap.SugaredLogger, gameUC GameService) *GameHandler {
	return &GameHandler{
		cfg:     cfg,
		log:     log,
		gameUC:  gameUC,
		streams: newStreamHub(),
	}
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/import", g.HandleImport)
		r.Get("/", g.HandleListGames)
		r.Get("/dyer/{signature}", g.HandleFindByDyer)
		r.Get("/{id}", g.HandleGetGame)
		r.Get("/{id}/sgf", g.HandleGetSGF)
		r.Get("/{id}/board", g.HandleGameState)
		r.Post("/{id}/move", g.HandlePlayMove)
		r.Get("/{id}/stream", g.HandleStream)
	})
}

// HandleImport archives the record in the request body. The filename query
// parameter picks the format.
func (g *GameHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "upload.sgf"
	}

	body, err := utils.ReadRequestBody(w, r, maxRecordSize)
	if err != nil {
		g.log.Errorw("failed to read import body", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	imported, err := g.gameUC.ImportRecord(r.Context(), filename, body)
	if err != nil {
		g.log.Errorw("import failed", "filename", filename, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, imported)
}

func (g *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	pageNum := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: "page must be a number"})
			return
		}
		pageNum = n
	}

	page, err := g.gameUC.ListGames(r.Context(), pageNum)
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, page)
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	found, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, found)
}

// HandleGetSGF serves the stored tree as a plain SGF file.
func (g *GameHandler) HandleGetSGF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sgfText, err := g.gameUC.GetSGF(r.Context(), id)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-go-sgf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.sgf"`)
	_, _ = w.Write([]byte(sgfText))
}

func (g *GameHandler) HandleFindByDyer(w http.ResponseWriter, r *http.Request) {
	found, err := g.gameUC.FindDuplicates(r.Context(), chi.URLParam(r, "signature"))
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteError(w, err)
		return
	}
	if found == nil {
		found = []game.Game{}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, found)
}

func (g *GameHandler) HandleGameState(w http.ResponseWriter, r *http.Request) {
	state, err := g.gameUC.GameState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandlePlayMove(w http.ResponseWriter, r *http.Request) {
	var move game.Move
	if err := utils.DecodeJSONRequest(r, &move); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	state, err := g.gameUC.PlayMove(r.Context(), chi.URLParam(r, "id"), move)
	if err != nil {
		g.log.Infow("move rejected", "move", move, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	g.streams.broadcast(state.GameID, state, g.log)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

// HandleStream upgrades to a websocket that receives every move played in
// the game. Moves sent by the client are played and broadcast to everyone
// watching; rejected moves are answered to the sender only.
func (g *GameHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	state, err := g.gameUC.GameState(ctx, id)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Errorw("upgrade error", "error", err)
		return
	}

	sub := &subscriber{conn: conn}
	g.streams.add(id, sub)
	defer func() {
		g.streams.remove(id, sub)
		conn.Close()
	}()

	if err := sub.send(state); err != nil {
		g.log.Errorw("write error", "game", id, "error", err)
		return
	}

	for {
		var move game.Move
		if err := conn.ReadJSON(&move); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Errorw("read error", "game", id, "error", err)
			}
			return
		}

		state, err := g.gameUC.PlayMove(ctx, id, move)
		if err != nil {
			g.log.Infow("move rejected", "game", id, "move", move, "error", err)
			if err := sub.send(httpresponse.ErrorResponse{ErrorDescription: err.Error()}); err != nil {
				return
			}
			continue
		}

		g.streams.broadcast(id, state, g.log)
	}
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// streamHub tracks the websockets watching each game.
type streamHub struct {
	mu    sync.RWMutex
	games map[string]map[*subscriber]struct{}
}

func newStreamHub() *streamHub {
	return &streamHub{games: make(map[string]map[*subscriber]struct{})}
}

func (h *streamHub) add(id string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[id] == nil {
		h.games[id] = make(map[*subscriber]struct{})
	}
	h.games[id][s] = struct{}{}
}

func (h *streamHub) remove(id string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.games[id], s)
	if len(h.games[id]) == 0 {
		delete(h.games, id)
	}
}

func (h *streamHub) broadcast(id string, v any, log *zap.SugaredLogger) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.games[id]))
	for s := range h.games[id] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.send(v); err != nil {
			log.Errorw("write to watcher failed", "game", id, "error", err)
			s.conn.Close()
			h.remove(id, s)
		}
	}
}
