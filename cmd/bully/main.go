// Command bully runs a single leader-election pass: one peer set, one
// protocol, then prints each peer's message count and observed
// coordinator.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/config"
	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/harness"
	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/metrics"
)

func main() {
	defaults, err := config.Load(getEnv("BULLY_CONFIG", "bully.yaml"))
	if err != nil {
		log.Fatalf("bully: %v", err)
	}

	defaultBasePort := defaults.BasePort
	if defaultBasePort == 0 {
		defaultBasePort = 5000
	}

	args, err := parseRunArgs(os.Args[1:], defaultBasePort)
	if err != nil {
		fatalf("bully: %v", err)
	}

	rec := metrics.NewRecorder()
	if defaults.MetricsAddr != "" {
		go func() {
			log.Printf("bully: metrics listening on %s", defaults.MetricsAddr)
			if err := http.ListenAndServe(defaults.MetricsAddr, rec.Handler()); err != nil {
				log.Printf("bully: metrics server stopped: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	protocol := harness.Standard
	if args.protocol == "improved" {
		protocol = harness.Improved
	}

	fmt.Printf("num_nodes = %d\n", args.numNodes)
	fmt.Printf("alive_nodes = %v\n", args.alive)
	fmt.Printf("starter_nodes = %v\n", args.starters)

	opts := harness.RunOptions{
		BasePort:           args.basePort,
		ListenTimeout:      defaults.ListenTimeout(),
		ImprovedProbeDelay: defaults.ImprovedProbeDelay(),
		ImprovedDebounce:   defaults.ImprovedDebounce(),
		Silent:             false,
	}

	summary, err := harness.Run(ctx, protocol, args.numNodes, args.alive, args.starters, opts, rec)
	if err != nil {
		log.Fatalf("bully: %v", err)
	}

	fmt.Println()
	var total uint64
	for _, r := range summary.Results {
		fmt.Printf("%d sent %d messages, and got coordinator %d\n", r.ID, r.MessagesSent, r.CoordinatorID)
		total += r.MessagesSent
	}
	fmt.Printf("Total messages sent: %d\n", total)
	fmt.Println()

	if summary.Consensus {
		fmt.Printf("Coordinator: %d\n", summary.Results[0].CoordinatorID)
	} else {
		fmt.Println("No consensus or wrong coordinator elected")
		for _, r := range summary.Results {
			fmt.Printf("  peer %d observed coordinator %d\n", r.ID, r.CoordinatorID)
		}
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
