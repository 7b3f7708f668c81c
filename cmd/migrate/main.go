// Command migrate applies the receipts schema to a PostgreSQL database
// without starting the service.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/Skotchmaster/receipts/internal/config"
	"github.com/Skotchmaster/receipts/internal/migrations"
	pkgconfig "github.com/Skotchmaster/receipts/pkg/config"
	"github.com/Skotchmaster/receipts/pkg/logging"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	list := flag.Bool("list", false, "print migration names and exit")
	flag.Parse()

	logger := logging.New(pkgconfig.EnvDefault("LOG_LEVEL", "info"), pkgconfig.EnvDefault("LOG_FORMAT", "text"))

	if *list {
		names, err := migrations.Names()
		if err != nil {
			log.Fatalf("list: %v", err)
		}
		for _, n := range names {
			logger.Info("migration", "name", n)
		}
		return
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Printf("warning: %v", err)
	}
	dsn := pkgconfig.EnvDefault("DATABASE_URL", "")
	if err := pkgconfig.RequireNonEmpty(dsn, "DATABASE_URL"); err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("migrations_applied")
}
