// Command seed loads demo catalog data and an administrator account.
// Usage: go run cmd/seed/main.go [-db path/to/maktaba.db]
package main

import (
	"flag"
	"log"

	"github.com/yahayabawa/maktaba/internal/config"
	"github.com/yahayabawa/maktaba/internal/seed"
)

func main() {
	cfg := config.NewConfig()
	dbPath := flag.String("db", cfg.Database.Path, "path to the database file")
	flag.Parse()

	cfg.Database.Path = *dbPath

	log.Printf("Seeding database at %s...", cfg.Database.Path)
	if err := seed.Run(cfg); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
