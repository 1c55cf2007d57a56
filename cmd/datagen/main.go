package main

import (
	"flag"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/vanshika/bunqdash/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		incoming    = flag.Float64("incoming-chance", cfg.IncomingChance, "probability that a generated payment is incoming")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation (0 uses the clock)")
		outputDir   = flag.String("output-dir", "data", "directory to write user.json, accounts.json and transactions.json")
		writeStdout = flag.Bool("stdout", false, "write the combined fixtures to stdout instead of files")
	)
	flag.Parse()

	fixtures := generator.NewFixtures(generator.New(generator.Config{
		IncomingChance: clampProbability(*incoming),
		Seed:           *seed,
	}))

	if *writeStdout {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fixtures); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write fixtures to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteFixtures(fixtures, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write fixtures: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, txs := range fixtures.Transactions {
		total += len(txs)
	}
	fmt.Fprintf(os.Stdout, "Generated %d accounts and %d payments into %s\n", len(fixtures.Accounts), total, *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
