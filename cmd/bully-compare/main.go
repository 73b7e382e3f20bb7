// Command bully-compare is the batch comparator: for every run in a JSON
// batch file, it executes one Standard pass then one Improved pass,
// measures wall time around each, and emits a table plus a log-scale bar
// rendering.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/config"
	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/harness"
	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/metrics"
	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/report"
)

func main() {
	defaults, err := config.Load(getEnv("BULLY_CONFIG", "bully.yaml"))
	if err != nil {
		log.Fatalf("bully-compare: %v", err)
	}

	defaultBasePort := defaults.BasePort
	if defaultBasePort == 0 {
		defaultBasePort = 4000
	}

	fs := flag.NewFlagSet("bully-compare", flag.ExitOnError)
	basePort := fs.Int("p", defaultBasePort, "base UDP port")
	file := fs.String("f", "batch.json", "path to batch JSON file")
	texOut := fs.String("t", "results.tex", "path to write the LaTeX table")
	plotOut := fs.String("P", "results.png", "base path for the bar rendering (written to <path>.txt)")
	verbose := fs.Bool("v", false, "verbose peer logging")
	fs.Parse(os.Args[1:])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rec := metrics.NewRecorder()
	if defaults.MetricsAddr != "" {
		go func() {
			log.Printf("bully-compare: metrics listening on %s", defaults.MetricsAddr)
			if err := http.ListenAndServe(defaults.MetricsAddr, rec.Handler()); err != nil {
				log.Printf("bully-compare: metrics server stopped: %v", err)
			}
		}()
	}

	entries, err := harness.LoadBatch(*file)
	if err != nil {
		log.Fatalf("bully-compare: %v", err)
	}

	opts := harness.RunOptions{
		BasePort:           *basePort,
		ListenTimeout:      defaults.ListenTimeout(),
		ImprovedProbeDelay: defaults.ImprovedProbeDelay(),
		ImprovedDebounce:   defaults.ImprovedDebounce(),
		Silent:             !*verbose,
	}

	rows := make([]harness.ComparisonRow, 0, len(entries))
	for i, entry := range entries {
		fmt.Printf("Test %d\n", i)
		row, err := harness.Compare(ctx, entry, opts, rec)
		if err != nil {
			log.Fatalf("bully-compare: run %d: %v", i, err)
		}
		row.Index = i
		rows = append(rows, row)

		fmt.Printf("  standard: %d msgs, %s\n", row.StandardMsgs, row.StandardElapsed)
		fmt.Printf("  improved: %d msgs, %s\n", row.ImprovedMsgs, row.ImprovedElapsed)
	}

	texFile, err := os.Create(*texOut)
	if err != nil {
		log.Fatalf("bully-compare: %v", err)
	}
	defer texFile.Close()
	if err := report.WriteTex(texFile, rows); err != nil {
		log.Fatalf("bully-compare: write tex: %v", err)
	}

	plotFile, err := os.Create(*plotOut + ".txt")
	if err != nil {
		log.Fatalf("bully-compare: %v", err)
	}
	defer plotFile.Close()
	if err := report.WritePlot(plotFile, rows); err != nil {
		log.Fatalf("bully-compare: write plot: %v", err)
	}

	fmt.Printf("\nWrote %s and %s.txt\n", *texOut, *plotOut)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
