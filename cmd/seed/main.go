// Command seed populates the order and shipment stores with the demo
// dataset, including the fixed test orders A1001 and A2002.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/wismo-agent/server/internal/agent/repo"
	"github.com/wismo-agent/server/internal/core"
	"github.com/wismo-agent/server/internal/seed"
	logx "github.com/wismo-agent/server/pkg/logger"
	pkgredis "github.com/wismo-agent/server/pkg/redis"
)

type seedConfig struct {
	Redis       pkgredis.Config
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func main() {
	count := flag.Int("n", 200, "number of generated orders (the two fixed test orders come on top)")
	seedVal := flag.Int64("seed", 0, "random seed; 0 means time-based")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg seedConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	src := *seedVal
	if src == 0 {
		src = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(src))

	ctx := context.Background()
	records := seed.Dataset(*count, time.Now().UTC(), rng)

	orders := repo.NewRedisOrderRepository(rdb)
	shipments := repo.NewRedisShipmentRepository(rdb)

	for i, rec := range records {
		o, s := rec.Order, rec.Shipment
		if err := orders.Put(ctx, &o); err != nil {
			log.Fatalf("Failed to seed order %s: %v", o.OrderID, err)
		}
		if err := shipments.Put(ctx, &s); err != nil {
			log.Fatalf("Failed to seed shipment %s: %v", s.TrackingID, err)
		}
		if (i+1)%25 == 0 {
			fmt.Printf("Seeded %d/%d\n", i+1, len(records))
		}
	}

	fmt.Printf("Seeding complete: %d orders written.\n", len(records))
	fmt.Println("Fixed test orders: A1001 (moving) and A2002 (delivered, high value).")
}
