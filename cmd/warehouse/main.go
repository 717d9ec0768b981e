// cmd/warehouse/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/andresuchdata/supplychain-analytics/internal/warehouse/csvimport"
	"github.com/andresuchdata/supplychain-analytics/pkg/logger"
)

func main() {
	dbURL := flag.String("db-url", os.Getenv("DATABASE_URL"), "Database connection string")
	dataDir := flag.String("data-dir", "./data/exports", "Directory containing CSV exports")
	dataset := flag.String("type", "", "Dataset to import (orders, inventory, returns, or all)")
	dateStr := flag.String("date", time.Now().Format("20060102"), "Date in YYYYMMDD format")
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("Database URL is required (use -db-url flag or DATABASE_URL)")
	}

	db, err := sql.Open("pgx", *dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	processor := csvimport.NewProcessor(db, logger.Log)

	filesToProcess := make(map[string]string)
	switch *dataset {
	case "orders":
		filesToProcess["orders"] = filepath.Join(*dataDir, "orders", *dateStr+".csv")
	case "inventory":
		filesToProcess["inventory"] = filepath.Join(*dataDir, "inventory", *dateStr+".csv")
	case "returns":
		filesToProcess["returns"] = filepath.Join(*dataDir, "returns", *dateStr+".csv")
	case "all", "":
		filesToProcess["orders"] = filepath.Join(*dataDir, "orders", *dateStr+".csv")
		filesToProcess["inventory"] = filepath.Join(*dataDir, "inventory", *dateStr+".csv")
		filesToProcess["returns"] = filepath.Join(*dataDir, "returns", *dateStr+".csv")
	default:
		log.Fatalf("Unknown dataset type: %s", *dataset)
	}

	for dataset, filePath := range filesToProcess {
		log.Printf("Processing %s file: %s", dataset, filePath)

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			log.Printf("File not found, skipping: %s", filePath)
			continue
		}

		start := time.Now()
		if err := processor.ProcessFile(context.Background(), filePath); err != nil {
			log.Printf("Error processing %s: %v", filePath, err)
			continue
		}

		log.Printf("Successfully processed %s in %v", filePath, time.Since(start))
	}
}
