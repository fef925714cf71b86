package main

import (
	"log"
	"os"

	"automod-bot/bot"
	"automod-bot/config"
	"automod-bot/handlers"
	"automod-bot/utils/database"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.InitRuleDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	// Rules and tasks share one sqlite file.
	if err := database.EnsureTaskTable(db); err != nil {
		log.Fatalf("Error initializing task table: %v", err)
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)
	defer b.Close()

	b.Run()
}
