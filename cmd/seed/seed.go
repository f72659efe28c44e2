package main

import (
	"context"
	"log"
	"os"
	"time"

	"course-material-service/internal/config"
	"course-material-service/models"
	"course-material-service/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// Seeds the initial admin account. Idempotent: exits cleanly if the admin
// already exists.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	if len(password) < 8 {
		log.Fatal("ADMIN_PASSWORD must be at least 8 characters")
	}

	var existing models.User
	if err := usersCollection.FindOne(context.Background(), bson.M{"email": email}).Decode(&existing); err == nil {
		log.Printf("Admin %s already exists, nothing to do", email)
		return
	}

	hashedPassword, err := utils.HashPassword(password, 0)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := models.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hashedPassword,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := usersCollection.InsertOne(context.Background(), admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Admin %s created", email)
}
