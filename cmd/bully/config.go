package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
)

// runArgs is the parsed single-protocol runner CLI: -n, mutually exclusive
// -a/-A, mutually exclusive -s/-S, -p. Mutual exclusion is validated by
// hand after fs.Parse.
type runArgs struct {
	protocol string
	numNodes int
	alive    []int
	starters []int
	basePort int
}

func parseRunArgs(argv []string, defaultBasePort int) (runArgs, error) {
	fs := flag.NewFlagSet("bully", flag.ContinueOnError)

	protocol := fs.String("protocol", "standard", "election protocol: standard | improved")
	numNodes := fs.Int("n", 5, "universe size (num_nodes)")
	aliveList := fs.String("a", "", "comma-separated alive ids")
	numAlive := fs.Int("A", 0, "number of alive ids to sample at random")
	starterList := fs.String("s", "", "comma-separated starter ids")
	numStarters := fs.Int("S", 0, "number of starters to sample at random from alive")
	basePort := fs.Int("p", defaultBasePort, "base UDP port")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: bully -n <num_nodes> (-a <ids> | -A <count>) (-s <ids> | -S <count>) [-p <base_port>] [-protocol standard|improved]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(argv); err != nil {
		return runArgs{}, err
	}

	if (*aliveList == "") == (*numAlive == 0) {
		return runArgs{}, fmt.Errorf("exactly one of -a or -A is required")
	}
	if (*starterList == "") == (*numStarters == 0) {
		return runArgs{}, fmt.Errorf("exactly one of -s or -S is required")
	}

	var alive []int
	var err error
	if *aliveList != "" {
		alive, err = parseIntList(*aliveList)
		if err != nil {
			return runArgs{}, fmt.Errorf("-a: %w", err)
		}
	} else {
		alive = sampleSorted(*numNodes, *numAlive)
	}

	var starters []int
	if *starterList != "" {
		starters, err = parseIntList(*starterList)
		if err != nil {
			return runArgs{}, fmt.Errorf("-s: %w", err)
		}
	} else {
		starters = sampleFromSorted(alive, *numStarters)
	}

	return runArgs{
		protocol: *protocol,
		numNodes: *numNodes,
		alive:    alive,
		starters: starters,
		basePort: *basePort,
	}, nil
}

func parseIntList(csv string) ([]int, error) {
	fields := strings.Split(csv, ",")
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", f, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// sampleSorted draws count distinct ids from [0, numNodes), sorted.
func sampleSorted(numNodes, count int) []int {
	pool := make([]int, numNodes)
	for i := range pool {
		pool[i] = i
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	picked := append([]int(nil), pool[:min(count, len(pool))]...)
	sort.Ints(picked)
	return picked
}

// sampleFromSorted draws count distinct ids from the alive set, sorted.
func sampleFromSorted(alive []int, count int) []int {
	pool := append([]int(nil), alive...)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	picked := append([]int(nil), pool[:min(count, len(pool))]...)
	sort.Ints(picked)
	return picked
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
