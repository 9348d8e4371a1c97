package main

import (
	"flag"
	"log"

	"github.com/antoniosasso00/manta-management-system-sub000/pkg/config"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/database/postgresql"
	"github.com/antoniosasso00/manta-management-system-sub000/seeders"
)

func main() {
	runDictionaries := flag.Bool("dictionaries", false, "seed departments, parts and users")
	runDemo := flag.Bool("demo", false, "seed demo work orders")
	runAll := flag.Bool("all", false, "run every seeder")
	flag.Parse()

	if !*runDictionaries && !*runDemo && !*runAll {
		log.Println("no seeder selected")
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	if *runAll || *runDictionaries {
		seeders.SeedDictionaries(dbPool)
	}
	if *runAll || *runDemo {
		seeders.SeedDemoData(dbPool)
	}
}
