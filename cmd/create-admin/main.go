// Command create-admin bootstraps an ADMIN account. Signup always creates
// USER accounts, so the first administrator has to come from here.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/logger"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/utils"
	"github.com/iliyamo/todo-api/internal/validation"
)

type adminInput struct {
	Name     string `json:"name" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email,min=6"`
	Password string `json:"password" validate:"required,min=6"`
}

func main() {
	var in adminInput
	flag.StringVar(&in.Name, "name", "", "display name (at least 6 characters)")
	flag.StringVar(&in.Email, "email", "", "login email")
	flag.StringVar(&in.Password, "password", os.Getenv("ADMIN_PASSWORD"), "password (defaults to $ADMIN_PASSWORD)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadDatabase()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "create-admin")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	if err := validation.New().Validate(&in); err != nil {
		log.Fatal().Err(err).Msg("invalid input")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	hash, err := utils.NewPasswordHasher(cfg.BcryptCost).Hash(in.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	u := &model.User{Name: in.Name, Email: in.Email, Password: hash, Role: model.RoleAdmin}
	if err := repository.NewUserRepo(db).Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Fatal().Str("email", in.Email).Msg("a user with this email already exists")
		}
		log.Fatal().Err(err).Msg("create admin")
	}
	log.Info().Uint64("user_id", u.ID).Str("email", u.Email).Msg("admin created")
}
