package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"groupchat/backend/internal/chathub"
	"groupchat/backend/internal/config"
	"groupchat/backend/internal/models"
	"groupchat/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db)
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "list-rooms":
		var rooms []models.ChatGroup
		if err := db.Order("created_at").Find(&rooms).Error; err != nil {
			log.Fatalf("Error listing rooms: %v", err)
		}
		for _, room := range rooms {
			kind := "group"
			if room.IsPrivate {
				kind = "dm"
			}
			fmt.Printf("%s\t%s\t%q\tmembers=%d\n", room.GroupName, kind, room.GroupchatName, len(room.Members))
		}
	case "create-group":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin create-group <name> <admin_username>")
			os.Exit(1)
		}
		room, err := storageSvc.CreateGroupChat(ctx, os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Error creating group: %v", err)
		}
		fmt.Printf("Group %q created with identifier %s.\n", room.GroupchatName, room.GroupName)
	case "delete-room":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin delete-room <room_id>")
			os.Exit(1)
		}
		roomName := os.Args[2]
		if err := storageSvc.DeleteRoom(ctx, roomName); err != nil {
			log.Fatalf("Error deleting room: %v", err)
		}
		// With the Redis fabric, tell the running servers to release the
		// room's live subscriptions too.
		if cfg.Fabric == config.FabricRedis {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
			fabric := chathub.NewRedisBroadcaster(rdb)
			if err := fabric.CloseChannel(ctx, roomName); err != nil {
				log.Fatalf("Room deleted, but closing its channel failed: %v", err)
			}
		}
		fmt.Printf("Room %s has been deleted.\n", roomName)
	case "history":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin history <room_id> [limit]")
			os.Exit(1)
		}
		limit := config.DefaultHistoryLimit
		if len(os.Args) > 3 {
			limit, err = strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid limit. Please provide an integer.")
				os.Exit(1)
			}
		}
		msgs, err := storageSvc.ListRecentMessages(ctx, os.Args[2], limit)
		if err != nil {
			log.Fatalf("Error loading history: %v", err)
		}
		for _, msg := range msgs {
			fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.Author, msg.DisplayText())
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
