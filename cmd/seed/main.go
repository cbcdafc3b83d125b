// Command seed empties the todos table and, unless -reset is given, fills
// it with a handful of sample todos.
package main

import (
	"context"
	"flag"

	"example.com/todos-api/internal/config"
	"example.com/todos-api/internal/db"
	"example.com/todos-api/internal/logger"
	"example.com/todos-api/internal/service"
	"example.com/todos-api/internal/storage"
	"example.com/todos-api/internal/todo"
)

var samples = []todo.Params{
	{Title: todo.Value("Watch Sunday Night Football"), Due: todo.Value("2025-11-09"), Notes: todo.Value("Chiefs vs Bills - should be a good one")},
	{Title: todo.Value("Check boat rigging before weekend"), Due: todo.Value("2025-11-07"), Notes: todo.Value("Forecast looks perfect for sailing")},
	{Title: todo.Value("Prep algebra tutoring session"), Due: todo.Value("2025-11-06"), Notes: todo.Value("Review quadratic equations and word problems")},
	{Title: todo.Value("Renew sailing club membership"), Due: todo.Value("2025-11-15"), Notes: todo.Value("")},
	{Title: todo.Value("Update fantasy football roster"), Due: todo.Value("2025-11-08"), Notes: todo.Value("Check injury reports before Thursday game")},
	{Title: todo.Value("Order new life jackets"), Due: todo.Value("2025-11-20"), Notes: todo.Value("")},
}

func main() {
	resetOnly := flag.Bool("reset", false, "delete every todo and exit without seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogJSON)

	if cfg.StoreDriver == db.DriverMemory {
		logger.Fatal("seeding needs a persistent store", "driver", cfg.StoreDriver)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.StoreDriver, cfg.DSN(), cfg.Pool())
	if err != nil {
		logger.Fatal("open database", "error", err)
	}
	defer conn.Close()

	if err := conn.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", "error", err)
	}
	repo, err := storage.NewRepository(ctx, conn)
	if err != nil {
		logger.Fatal("prepare repository", "error", err)
	}
	defer repo.Close()

	n, err := repo.Reset(ctx)
	if err != nil {
		logger.Fatal("reset todos", "error", err)
	}
	log.Info("deleted todos", "count", n)
	if *resetOnly {
		return
	}

	svc := service.New(repo)
	for _, p := range samples {
		t, err := svc.Create(ctx, p)
		if err != nil {
			logger.Fatal("seed todo", "title", p.Title.Value, "error", err)
		}
		log.Info("created todo", "id", t.ID, "title", t.Title)
	}
	log.Info("seeding complete", "count", len(samples))
}
