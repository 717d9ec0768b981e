// cmd/feed/main.go
package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/andresuchdata/supplychain-analytics/internal/config"
	"github.com/andresuchdata/supplychain-analytics/internal/extract"
	"github.com/andresuchdata/supplychain-analytics/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	seed := cfg.Simulator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim := extract.NewSimulator(extract.SimulatorOptions{
		OrderCount: cfg.Simulator.OrderCount,
		Days:       cfg.Simulator.Days,
		Rand:       rand.New(rand.NewSource(seed)),
		Logger:     logger.Log,
	})

	srv := newFeedServer(sim.Dataset())

	r := mux.NewRouter()
	srv.registerRoutes(r)

	port := cfg.Feed.Port
	addr := fmt.Sprintf(":%s", port)
	logger.Log.Info().Str("addr", addr).Int64("seed", seed).Msg("Feed server starting")
	logger.Log.Fatal().Err(http.ListenAndServe(addr, r)).Msg("Feed server stopped")
}
