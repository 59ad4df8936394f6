package main

import (
	"context"
	"log"
	"os"

	"posterminal/internal/config"
	"posterminal/internal/db"
	productrepo "posterminal/internal/repository/product"
	"posterminal/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := productrepo.NewPostgres(pool, logger)
	if err := seed.Apply(ctx, repo); err != nil {
		logger.Fatalf("apply seed: %v", err)
	}

	logger.Println("seed applied")
}
