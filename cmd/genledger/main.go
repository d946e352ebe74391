// Command genledger emits a synthetic donation ledger CSV with accounts of
// known cadence. Useful for exercising the analyzer against ground truth.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/donorlab/cadence/internal/synthetic"
)

// Default generation parameters.
const (
	defaultAccounts = 100
	defaultSpanDays = 365
	defaultSeed     = 42
)

func main() {
	var (
		out      = flag.String("out", "transactions.csv", "Output CSV path")
		accounts = flag.Int("accounts", defaultAccounts, "Number of accounts to generate")
		spanDays = flag.Int("span", defaultSpanDays, "Calendar span of the ledger in days")
		seed     = flag.Int64("seed", defaultSeed, "Random seed (fixed for reproducible ledgers)")
		start    = flag.String("start", "", "First ledger day, YYYY-MM-DD (default: span days ago)")
	)
	flag.Parse()

	opts := []synthetic.Option{
		synthetic.WithAccounts(*accounts),
		synthetic.WithSpanDays(*spanDays),
		synthetic.WithSeed(*seed),
	}
	if *start != "" {
		t, err := time.Parse("2006-01-02", *start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -start: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, synthetic.WithStart(t))
	}

	gen := synthetic.New(opts...)
	generated := gen.Generate()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := synthetic.WriteCSV(f, generated); err != nil {
		fmt.Fprintf(os.Stderr, "write ledger: %v\n", err)
		os.Exit(1)
	}

	rows := 0
	for _, a := range generated {
		rows += len(a.Txns)
	}
	fmt.Printf("wrote %d rows for %d accounts to %s\n", rows, len(generated), *out)
}
