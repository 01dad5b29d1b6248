// Offline export of recorded marks straight from the result store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dovydenkovas/learned-cat/internal/config"
	"github.com/dovydenkovas/learned-cat/internal/logger"
	"github.com/dovydenkovas/learned-cat/internal/report"
	"github.com/dovydenkovas/learned-cat/internal/store"
)

func main() {
	output := flag.String("o", "", "write CSV to this file instead of stdout")
	username := flag.String("user", "", "print one user's results instead of CSV")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup("error", cfg.LogFormat)

	ctx := context.Background()
	st, err := store.Open(ctx, store.Driver(cfg.DBDriver), cfg.DatabaseURL, log)
	if err != nil {
		fail(err)
	}
	defer st.Close()

	if *username != "" {
		records, err := st.ResultsFor(ctx, *username)
		if err != nil {
			fail(err)
		}
		if err := report.WriteUserListing(os.Stdout, *username, records); err != nil {
			fail(err)
		}
		return
	}

	records, err := st.AllResults(ctx)
	if err != nil {
		fail(err)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteCSV(out, records); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
