// Command migrate inspects and changes the database schema.
//
//	migrate up              apply pending SQL migrations
//	migrate auto            run GORM AutoMigrate for users, profiles and posts
//	migrate status          show applied and pending migrations
//	migrate down [version]  roll back one migration, the newest by default
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"devconnector/internal/config"
	"devconnector/internal/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate <up|auto|status|down [version]>")

func main() {
	flag.Parse()
	if err := run(context.Background(), flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	switch args[0] {
	case "up":
		return database.RunMigrations(ctx, db)
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		return database.ApplySchema(ctx, db, cfg)
	case "status":
		return status(ctx, db, cfg)
	case "down":
		version := 0
		if len(args) > 1 {
			if version, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid version %q", args[1])
			}
		}
		all, err := database.Migrations()
		if err != nil {
			return err
		}
		m, err := database.NewMigrator(db, all).Down(ctx, version)
		if err != nil {
			return err
		}
		log.Printf("rolled back %s", m)
		return nil
	default:
		return errUsage
	}
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	log.Printf("mode=%s env=%s sql=%t auto=%t", st.Mode, st.Environment, st.RunsSQL, st.RunsAuto)
	for _, a := range st.Applied {
		log.Printf("applied  %06d_%s at %s", a.Version, a.Name, a.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range st.Pending {
		log.Printf("pending  %s", m)
	}
	return nil
}
