package config

import (
	"fmt"
	"log"
	"os"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Settings holds everything read from the environment besides the DB DSN.
type Settings struct {
	OpenAIKey       string
	AWSRegion       string
	FirestoreURL    string // project document root, e.g. https://firestore.googleapis.com/v1/projects/<p>/databases/(default)/documents
	FirestoreToken  string
	GatewaySecret   string // shared token the chat gateway sends on /events
	DashboardSecret string // HMAC secret for dashboard bearer tokens
	ListenAddr      string
}

func LoadSettings() Settings {
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Settings{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		FirestoreURL:    os.Getenv("FIRESTORE_DOCUMENTS_URL"),
		FirestoreToken:  os.Getenv("FIRESTORE_BEARER_TOKEN"),
		GatewaySecret:   os.Getenv("GATEWAY_SECRET"),
		DashboardSecret: os.Getenv("DASHBOARD_JWT_SECRET"),
		ListenAddr:      addr,
	}
}

func InitDB() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("no .env file, relying on environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.LogItem{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
}
