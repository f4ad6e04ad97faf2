// Command evolve runs the evolutionary search loop for a fixed number of
// generations and prints the best genome/fitness found, mirroring the
// teacher's cmd/<tool>/main.go layout.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/tensegral/fabricator/config"
	"github.com/tensegral/fabricator/evolution"
)

func main() {
	configPath := flag.String("config", "", "Override config YAML file (empty = use embedded defaults)")
	masterSeed := flag.Uint64("seed", 42, "Master seed driving every individual's lineage and the population's tournament RNG")
	generations := flag.Int("generations", 50, "Number of evaluated individuals to run before stopping")
	maxFrames := flag.Int("max-frames", 20_000_000, "Safety cap on total Iterate() calls")
	fast := flag.Bool("fast", true, "Run in Fast viewing mode (larger settle batches per Iterate call)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	e := evolution.NewWithMasterSeed(cfg, *masterSeed)
	if *fast {
		e.SetMode(evolution.Fast)
	}

	lastReported := -1
	for frame := 0; frame < *maxFrames; frame++ {
		e.Iterate()
		if e.Generation() != lastReported {
			lastReported = e.Generation()
			stats := e.Stats()
			slog.Info("generation_evaluated",
				"generation", lastReported,
				"population_size", stats.Size,
				"max_fitness", fmt.Sprintf("%.4f", stats.MaxFitness),
				"mean_fitness", fmt.Sprintf("%.4f", stats.MeanFitness),
				"std_dev", fmt.Sprintf("%.4f", stats.StdDev),
			)
			if lastReported >= *generations {
				break
			}
		}
	}

	best, ok := e.Best()
	if !ok {
		fmt.Println("no individual was ever evaluated")
		return
	}
	fmt.Printf("best fitness=%.6f height=%.3f push_count=%d seed=%d genome=%s\n",
		best.Fitness, best.Height, best.PushCount, best.Seed,
		base64.StdEncoding.EncodeToString(best.Genome.Offsets()),
	)
}
