package main

import (
	"context"
	"flag"
	"log"
	"os"

	"posterminal/internal/config"
	"posterminal/internal/db"
	"posterminal/internal/importer"
	productrepo "posterminal/internal/repository/product"
)

func main() {
	path := flag.String("file", "", "path to catalog CSV export")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if *path == "" {
		logger.Fatal("missing -file")
	}

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := productrepo.NewPostgres(pool, logger)
	imp := importer.NewCSVImporter(f, repo)

	n, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", n, err)
	}
	logger.Printf("imported %d products", n)
}
