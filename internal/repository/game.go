package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gofish/internal/bootstrap"
	"gofish/internal/domain/game"
	errs "gofish/internal/errors"
)

const (
	gamesCollection = "games"
	sgfKeyPrefix    = "sgf:"
)

// GameRepository keeps SGF text in Redis and the searchable game records
// in MongoDB. Both are keyed by the game ID.
type GameRepository struct {
	cfg   *bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg *bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func sgfKey(id string) string {
	return sgfKeyPrefix + id
}

func totalPages(count int64, pageLimit int) int {
	if pageLimit < 1 {
		return 0
	}
	return int((count + int64(pageLimit) - 1) / int64(pageLimit))
}

func (g *GameRepository) SaveSGF(ctx context.Context, id string, sgfText string) error {
	return g.redis.Set(ctx, sgfKey(id), sgfText, 0).Err()
}

func (g *GameRepository) LoadSGF(ctx context.Context, id string) (string, error) {
	sgfText, err := g.redis.Get(ctx, sgfKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", errs.ErrGameNotFound, id)
	}
	return sgfText, err
}

func (g *GameRepository) PutGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	_, err := collection.InsertOne(ctx, gameData)
	if err != nil {
		g.log.Errorf("failed to insert game to database: %v", err)
		return err
	}

	g.log.Infof("game inserted successfully with id: %s", gameData.ID)
	return nil
}

func (g *GameRepository) GetGame(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	var result game.Game
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, fmt.Errorf("%w: %s", errs.ErrGameNotFound, id)
	} else if err != nil {
		g.log.Error(err)
		return game.Game{}, err
	}

	return result, nil
}

func (g *GameRepository) FindByDyer(ctx context.Context, dyer string) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{"dyer": dyer}, opts)
	if err != nil {
		g.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []game.Game
	for cursor.Next(ctx) {
		var found game.Game
		if err = cursor.Decode(&found); err != nil {
			g.log.Error(err)
			return result, err
		}
		result = append(result, found)
	}

	return result, cursor.Err()
}

// ListGames returns one page of records, newest first.
func (g *GameRepository) ListGames(ctx context.Context, pageNum int) (*game.GamesPage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)
	pageLimit := g.cfg.PageLimitGames

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		g.log.Error(err)
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((pageNum - 1) * pageLimit)).
		SetLimit(int64(pageLimit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		g.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	games := make([]game.Game, 0, pageLimit)
	if err = cursor.All(ctx, &games); err != nil {
		g.log.Error(err)
		return nil, err
	}

	return &game.GamesPage{
		PageNum:    pageNum,
		TotalPages: totalPages(count, pageLimit),
		Games:      games,
	}, nil
}
