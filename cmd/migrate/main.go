// Package main applies SQL migrations in filename order.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Printf("failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("failed to read migrations dir: %v\n", err)
		os.Exit(1)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		sqlBytes, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("failed to read %s: %v\n", name, err)
			os.Exit(1)
		}

		if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
			fmt.Printf("migration %s failed: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("applied %s\n", name)
	}

	fmt.Println("migrations complete")
}
