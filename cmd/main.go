package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"groupchat/backend/internal/api/handler"
	"groupchat/backend/internal/chathub"
	"groupchat/backend/internal/config"
	"groupchat/backend/internal/models"
	"groupchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDatabase(cfg config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ChatGroup{},
		&models.GroupMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database connection established, migrations complete.")
	return db
}

func setupFabric(cfg config.Config) chathub.Broadcaster {
	if cfg.Fabric != config.FabricRedis {
		log.Println("Using in-memory broadcast fabric.")
		return chathub.NewLocalBroadcaster()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Using Redis broadcast fabric.")
	return chathub.NewRedisBroadcaster(rdb)
}

func main() {
	log.Println("Starting GroupChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set!")
	}

	db := setupDatabase(cfg)
	s := storage.NewStorageService(db)

	fabric := setupFabric(cfg)
	presence := chathub.NewRegistry()
	tokens := handler.NewTokenService(cfg.JWTSecret)

	gateway := chathub.NewGateway(s, fabric, presence, tokens)

	r := gin.Default()
	h := handler.NewHandler(gateway, s, tokens)

	r.GET("/auth/token", h.GetToken)

	r.GET("/ws/chatroom/:room_id/", h.ServeChatWS)
	r.GET("/ws/online-status/", h.ServeOnlineStatusWS)

	api := r.Group("/api", h.AuthRequired())
	{
		api.POST("/groups", h.CreateGroupChat)
		api.POST("/chats/:username", h.GetOrCreateDirectChat)
		api.GET("/rooms/:room_id/messages", h.ListMessages)
		api.POST("/rooms/:room_id/messages", h.PostMessage)
		api.POST("/rooms/:room_id/join", h.JoinRoom)
		api.POST("/rooms/:room_id/leave", h.LeaveRoom)
		api.GET("/rooms/:room_id/online", h.RoomOnline)
		api.DELETE("/rooms/:room_id", h.DeleteRoom)
	}

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
