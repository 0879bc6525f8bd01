package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/database"
)

// Prints the DDL GORM migrates for the models, tables then indexes, to
// compare against data/initdb.
func main() {
	dbType := flag.String("type", "sqlite", "sqlite (pure Go) or sqlite3 (cgo)")
	flag.Parse()

	cfg := &config.Config{DBType: *dbType, DBDatabase: ":memory:"}
	dialector, err := database.Dialector(cfg)
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.Open(dialector, "silent")
	if err != nil {
		log.Fatal(err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	for _, kind := range []string{"table", "index"} {
		var rows []struct {
			Name string
			SQL  string
		}
		err := db.Raw("SELECT name, sql FROM sqlite_master WHERE type = ? AND sql IS NOT NULL ORDER BY name", kind).
			Scan(&rows).Error
		if err != nil {
			log.Fatal(err)
		}
		for _, row := range rows {
			fmt.Printf("\n=== %s: %s ===\n%s;\n", kind, row.Name, row.SQL)
		}
	}
}
