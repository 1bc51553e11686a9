// Command perf-regression compares two `go test -bench` outputs and fails
// when a redaction hot path slows down beyond its budget.
//
// Usage:
//
//	go test -bench 'Render|SelectiveRedact|ExtractReference' -benchmem -count 6 ./... > baseline.txt
//	go test -bench 'Render|SelectiveRedact|ExtractReference' -benchmem -count 6 ./... > candidate.txt
//	go run ./security/cmd/perf-regression -baseline baseline.txt -candidate candidate.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// trackedMetric binds one benchmark metric to its regression budget.
// The blur kernel is pure CPU and deterministic, so it gets a tight
// budget; the selective path runs detection and embedding comparison
// on top of the kernel and is allowed more jitter.
type trackedMetric struct {
	benchmark string
	metric    string
	limit     float64
}

var budgets = []trackedMetric{
	{"BenchmarkRender", "ns/op", 0.15},
	{"BenchmarkRender", "allocs/op", 0.0},
	{"BenchmarkSelectiveRedact", "ns/op", 0.30},
	{"BenchmarkSelectiveRedact", "allocs/op", 0.10},
	{"BenchmarkExtractReference", "ns/op", 0.30},
}

type sampleSet map[string]map[string][]float64

func main() {
	var (
		baselinePath  string
		candidatePath string
		slack         float64
	)

	flag.StringVar(&baselinePath, "baseline", "", "path to baseline benchmark output")
	flag.StringVar(&candidatePath, "candidate", "", "path to candidate benchmark output")
	flag.Float64Var(&slack, "slack", 0, "extra ratio added to every budget (0.05 = +5 points)")
	flag.Parse()

	if baselinePath == "" || candidatePath == "" {
		fmt.Fprintln(os.Stderr, "-baseline and -candidate are required")
		os.Exit(2)
	}
	if slack < 0 {
		fmt.Fprintln(os.Stderr, "-slack must be >= 0")
		os.Exit(2)
	}

	baseline, err := readSamples(baselinePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse baseline: %v\n", err)
		os.Exit(1)
	}
	candidate, err := readSamples(candidatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse candidate: %v\n", err)
		os.Exit(1)
	}

	var failures []string
	fmt.Println("redaction hot-path budgets:")
	fmt.Printf("%-28s %-10s %12s %12s %9s %8s\n", "benchmark", "metric", "baseline", "candidate", "delta", "budget")

	for _, b := range budgets {
		limit := b.limit + slack
		baseSamples := baseline[b.benchmark][b.metric]
		candidateSamples := candidate[b.benchmark][b.metric]
		if len(baseSamples) == 0 || len(candidateSamples) == 0 {
			failures = append(failures, fmt.Sprintf("missing samples for %s %s", b.benchmark, b.metric))
			continue
		}

		baseMedian := median(baseSamples)
		candidateMedian := median(candidateSamples)
		if baseMedian < 0 {
			failures = append(failures, fmt.Sprintf("invalid baseline median for %s %s", b.benchmark, b.metric))
			continue
		}

		var delta float64
		switch {
		case baseMedian > 0:
			delta = (candidateMedian - baseMedian) / baseMedian
		case candidateMedian > 0:
			// A zero baseline (typical for allocs/op on the kernel)
			// means any candidate allocation is a regression.
			delta = 1
		}

		fmt.Printf("%-28s %-10s %12.1f %12.1f %+8.2f%% %+7.0f%%\n",
			b.benchmark, b.metric, baseMedian, candidateMedian, delta*100, limit*100)
		if delta > limit {
			failures = append(failures, fmt.Sprintf("%s %s regressed by %+0.2f%% (budget %+0.2f%%)",
				b.benchmark, b.metric, delta*100, limit*100))
		}
	}

	if len(failures) > 0 {
		fmt.Fprintln(os.Stderr, "hot-path budget exceeded:")
		for _, failure := range failures {
			fmt.Fprintf(os.Stderr, "  - %s\n", failure)
		}
		os.Exit(1)
	}
}

func readSamples(path string) (sampleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tracked := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		tracked[b.benchmark] = true
	}

	samples := sampleSet{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		name := trimProcSuffix(fields[0])
		if !tracked[name] {
			continue
		}
		if _, ok := samples[name]; !ok {
			samples[name] = map[string][]float64{}
		}

		// Lines look like: BenchmarkRender-8  120  9514203 ns/op  64 allocs/op
		for i := 2; i+1 < len(fields); i += 2 {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			samples[name][fields[i+1]] = append(samples[name][fields[i+1]], value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// trimProcSuffix strips the -GOMAXPROCS suffix the bench runner appends.
func trimProcSuffix(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	copied := make([]float64, len(values))
	copy(copied, values)
	sort.Float64s(copied)

	mid := len(copied) / 2
	if len(copied)%2 == 1 {
		return copied[mid]
	}
	return (copied[mid-1] + copied[mid]) / 2
}
