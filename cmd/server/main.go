package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/amu-telemed/telemed-backend/config"
	"github.com/amu-telemed/telemed-backend/handlers"
	"github.com/amu-telemed/telemed-backend/realtime"
	"github.com/amu-telemed/telemed-backend/repository"
)

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using environment as-is")
	}
	cfg := config.LoadConfig()

	db, err := repository.ConnectToPostgreSQL(cfg)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := repository.Migrate(db); err != nil {
		logger.Fatal("schema migration failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	mongoClient, err := repository.ConnectMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Fatal("mongodb connection failed", zap.Error(err))
	}
	logger.Info("connected to MongoDB")

	store := repository.NewStore(db)
	archive := repository.NewLocationArchive(mongoClient, cfg.DBName)

	hub := realtime.NewHub(logger)
	chat := realtime.NewChatRelay(store, hub, nil, logger)
	ride := realtime.NewRideRelay(store, archive, hub, logger)

	socket := handlers.NewSocketServer(hub, chat, ride, cfg.JWTSecret, logger)
	router := handlers.NewRouter(socket, handlers.NewStatusHandler(hub), cfg.JWTSecret)

	logger.Info("server listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
