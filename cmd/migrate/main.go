package main

import (
	"flag"
	"log"
	"os"

	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var extensions = []string{"pgcrypto", "vector"}

func main() {
	check := flag.Bool("check", false, "only report which tables are missing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	if *check {
		if missing := missingTables(db); len(missing) > 0 {
			log.Fatalf("Missing tables: %v", missing)
		}
		log.Println("Schema is up to date")
		return
	}

	for _, ext := range extensions {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS " + ext).Error; err != nil {
			// Managed databases may need an admin to enable it.
			log.Printf("Warn: extension %s: %v", ext, err)
		}
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}
	log.Printf("Migrated %d tables", len(model.All()))
}

func missingTables(db *gorm.DB) []string {
	var missing []string
	for _, m := range model.All() {
		if !db.Migrator().HasTable(m) {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(m); err == nil {
				missing = append(missing, stmt.Schema.Table)
			}
		}
	}
	return missing
}
