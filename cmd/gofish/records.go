package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"gofish/internal/adapters"
	"gofish/internal/domain/game"
	repo "gofish/internal/repository"
	gameuc "gofish/internal/usecase/game"
	"gofish/internal/usecase/katago"
)

func (a *app) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out.sgf>",
		Short: "Convert an SGF, NGF or GIB record to SGF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := gameuc.Load(args[0])
			if err != nil {
				return err
			}
			if len(roots) == 1 {
				err = gameuc.Save(args[1], roots[0])
			} else {
				err = gameuc.SaveCollection(args[1], roots)
			}
			if err != nil {
				return err
			}
			a.log.Infof("wrote %d game(s) from %s to %s", len(roots), args[0], args[1])
			return nil
		},
	}
}

func (a *app) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Print a YAML summary of every game in the given records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var summaries []game.Game
			for _, path := range args {
				roots, err := gameuc.Load(path)
				if err != nil {
					return err
				}
				for _, root := range roots {
					summary := gameuc.Summarize(root)
					summary.Filename = filepath.Base(path)
					summary.Format = gameuc.Format(path)
					summaries = append(summaries, summary)
				}
			}

			out, err := yaml.Marshal(summaries)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (a *app) dyerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dyer <file>...",
		Short: "Print the Dyer signature of every game, for spotting duplicates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				roots, err := gameuc.Load(path)
				if err != nil {
					a.log.Warnw("skipping unreadable record", "path", path, "error", err)
					continue
				}
				for _, root := range roots {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", root.Dyer(), path)
				}
			}
			return nil
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file or dir>...",
		Short: "Archive records into Redis and MongoDB",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			stores, err := a.initDatabaseAdapters(ctx)
			if err != nil {
				return err
			}
			defer stores.close(context.Background())

			gameUC := gameuc.NewGameUseCase(stores.gameRepository(a.cfg, a.log), a.log)

			total := 0
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				if info.IsDir() {
					n, err := gameUC.ImportDirectory(ctx, path)
					if err != nil {
						return err
					}
					total += n
					continue
				}

				buf, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				imported, err := gameUC.ImportRecord(ctx, path, buf)
				if err != nil {
					return err
				}
				for _, g := range imported {
					if len(g.Duplicates) > 0 {
						a.log.Warnw("possible duplicate", "id", g.ID, "dyer", g.Dyer, "of", g.Duplicates)
					}
				}
				total += len(imported)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d game(s)\n", total)
			return nil
		},
	}
}

func (a *app) analyzeCommand() *cobra.Command {
	var visits int

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Replay the main line of a game into KataGo and print its preferred moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := gameuc.Load(args[0])
			if err != nil {
				return err
			}
			if visits <= 0 {
				visits = a.cfg.KatagoVisits
			}

			client, err := repo.NewKatagoClient(a.cfg, a.log)
			if err != nil {
				return err
			}
			defer client.Close()

			results, err := katago.NewAnalyzer(client, a.log).Analyze(cmd.Context(), roots[0], visits)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(results)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().IntVar(&visits, "visits", 0, "visits to wait for at each node (default KATAGO_VISITS)")
	return cmd
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func (a *app) initDatabaseAdapters(ctx context.Context) (*dataBaseAdapters, error) {
	mongoAdapter := adapters.NewAdapterMongo(a.cfg, a.log)
	if err := mongoAdapter.Init(ctx); err != nil {
		return nil, err
	}

	redisAdapter := adapters.NewAdapterRedis(a.cfg, a.log)
	if err := redisAdapter.Init(ctx); err != nil {
		mongoAdapter.Close(ctx)
		return nil, err
	}

	a.log.Info("database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}, nil
}
