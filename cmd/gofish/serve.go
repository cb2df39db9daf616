package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gofish/internal/bootstrap"
	gameDelivery "gofish/internal/delivery/game"
	ownMiddleware "gofish/internal/middleware"
	repo "gofish/internal/repository"
	gameuc "gofish/internal/usecase/game"
)

func (d *dataBaseAdapters) gameRepository(cfg *bootstrap.Config, log *zap.SugaredLogger) *repo.GameRepository {
	return repo.NewGameRepository(cfg, log, d.redisAdapter.GetClient(), d.mongoAdapter.Database)
}

func (d *dataBaseAdapters) close(ctx context.Context) {
	d.mongoAdapter.Close(ctx)
	d.redisAdapter.Close(ctx)
}

func newRouter(cfg *bootstrap.Config, handler *gameDelivery.GameHandler) *chi.Mux {
	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handler.Routes(r)
	return r
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game archive HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			stores, err := a.initDatabaseAdapters(ctx)
			if err != nil {
				return err
			}
			defer stores.close(context.Background())

			gameUC := gameuc.NewGameUseCase(stores.gameRepository(a.cfg, a.log), a.log)
			handler := gameDelivery.NewGameHandler(a.cfg, a.log, gameUC)

			server := &http.Server{
				Addr:    ":" + a.cfg.ServerPort,
				Handler: newRouter(a.cfg, handler),
			}

			go func() {
				<-ctx.Done()
				a.log.Info("received shutdown signal")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.log.Errorw("failed to shut down server", "error", err)
				}
			}()

			a.log.Infof("server is running on port %s", a.cfg.ServerPort)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
