// Package main provides account administration utilities for socialnet.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/models"
	"socialnet/internal/repository"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin deactivate <user_id|username>   - Soft-delete an account")
	fmt.Println("  admin reactivate <user_id|username>   - Restore a deactivated account")
	fmt.Println("  admin list-inactive                   - List deactivated accounts")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	// Cached users must be evicted so the access gate sees the change.
	cache.InitRedis(cfg.RedisURL)

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	switch os.Args[1] {
	case "deactivate", "reactivate":
		if len(os.Args) < 3 {
			usage()
		}
		active := os.Args[1] == "reactivate"
		if err := setActive(ctx, users, os.Args[2], active); err != nil {
			log.Fatalf("%s failed: %v", os.Args[1], err)
		}
	case "list-inactive":
		listInactive(db)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func resolve(ctx context.Context, users repository.UserRepository, identifier string) (*models.User, error) {
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil && id > 0 {
		return users.GetByID(ctx, uint(id))
	}
	user, err := users.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("User not found")
	}
	return user, nil
}

func setActive(ctx context.Context, users repository.UserRepository, identifier string, active bool) error {
	user, err := resolve(ctx, users, identifier)
	if err != nil {
		return err
	}
	if user.IsActive == active {
		fmt.Printf("User %s (ID: %d) already has isActive=%t\n", user.Username, user.ID, active)
		return nil
	}
	if err := users.UpdateFields(ctx, user.ID, map[string]interface{}{"is_active": active}); err != nil {
		return err
	}
	fmt.Printf("User %s (ID: %d) isActive=%t\n", user.Username, user.ID, active)
	return nil
}

func listInactive(db *gorm.DB) {
	var inactive []models.User
	if err := db.Where("is_active = ?", false).Order("id").Find(&inactive).Error; err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}

	if len(inactive) == 0 {
		fmt.Println("No deactivated accounts")
		return
	}
	for _, u := range inactive {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", u.ID, u.Username, u.Email)
	}
}
