package main

import (
	"context"
	"time"

	"TDProject/global"
	"TDProject/logger"
	"TDProject/middleware"
	"TDProject/module/game"
	"TDProject/module/player"
	"TDProject/service/storage"
	storageredis "TDProject/service/storage/redis"
	"TDProject/service/ws"
	"TDProject/tools/ids"
	"TDProject/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := global.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	ids.SetNodeID(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Fatalf("postgres connect: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatalf("postgres ping: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if err := storageredis.Init(storageredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}); err != nil {
			logger.Fatalf("redis connect: %v", err)
		}
		rdb = storageredis.Client()
		defer func() { _ = storageredis.Close() }()
	} else {
		logger.Warnf("REDIS_ADDR not set, snapshot cache and presence mirror disabled")
	}

	playerStore := player.NewStore(pool)
	gameStore := game.NewStore(pool, rdb)
	if err := playerStore.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}
	if err := gameStore.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	tokens := security.NewService(cfg.JWTSecret())

	gateway := ws.NewGateway(ws.GatewayDeps{
		Registry: ws.NewRegistry(),
		Rooms:    ws.NewRoomManager(),
		Tokens:   tokens,
		Players:  playerStore,
		States:   gameStore,
		Presence: storage.NewPresence(rdb),
	})

	playerHandler := player.NewHandler(playerStore, tokens)
	gameHandler := game.NewHandler(playerStore, gameStore)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	middleware.Route(r, middleware.Handlers{
		Register: playerHandler.Register,
		Login:    playerHandler.Login,
		Save:     gameHandler.Save,
		Load:     gameHandler.Load,
		WS:       gateway.HandleWS,
	})

	logger.Infof("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatalf("http server: %v", err)
	}
}
