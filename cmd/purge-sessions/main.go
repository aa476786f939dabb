// Command purge-sessions deletes session rows whose token has expired.
// Nothing in the server sweeps them; run this from cron or by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/logger"
	"github.com/iliyamo/todo-api/internal/repository"
)

func main() {
	olderThan := flag.Duration("older-than", 0, "only purge sessions that expired at least this long ago")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadDatabase()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "purge-sessions")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *olderThan < 0 {
		log.Fatal().Dur("older_than", *olderThan).Msg("-older-than must not be negative")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	before := time.Now().Add(-*olderThan)
	n, err := repository.NewTokenRepo(db).PurgeExpired(ctx, before)
	if err != nil {
		log.Fatal().Err(err).Msg("purge sessions")
	}
	log.Info().Time("before", before).Int64("removed", n).Msg("purged expired sessions")
	fmt.Println(n)
}
