package db

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/squirreldb/squirreldb-go/cmd/util"
	"github.com/squirreldb/squirreldb-go/lib/query"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for SquirrelDB servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfCollection   = "__perf"
	perfPayloadBytes = 256
	perfNumThreads   = 10
	perfQueryLimit   = 10
	perfSkip         = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert,query)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "collection"
	perfTestCmd.Flags().String(key, "__perf", util.WrapString("Collection the benchmark documents are written to"))
	key = "payload-size"
	perfTestCmd.Flags().Int(key, 256, util.WrapString("How much padding each benchmark document carries (in bytes)"))
	key = "query-limit"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Result limit of the benchmark query"))
	key = "metrics-addr"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional address to expose the client metrics on while the benchmark runs (e.g. localhost:9090)"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfCollection = viper.GetString("collection")
	perfPayloadBytes = viper.GetInt("payload-size")
	perfQueryLimit = viper.GetInt("query-limit")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	// Expose the client counters while the benchmark runs
	if addr := viper.GetString("metrics-addr"); addr != "" {
		go func() {
			err := http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				vmetrics.WritePrometheus(w, true)
			}))
			if err != nil {
				log.Printf("metrics listener failed: %v\n", err)
			}
		}()
		fmt.Printf("Client metrics exposed on http://%s\n", addr)
	}

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for SquirrelDB servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Collection: %s\n", perfCollection)
	fmt.Println()

	fmt.Println("starting tests...")

	padding := strings.Repeat("x", perfPayloadBytes)

	// Track inserted documents for cleanup
	var idsMu sync.Mutex
	ids := make([]string, 0)

	insertTimer := gometrics.NewTimer()
	insertResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("insert") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				start := time.Now()
				doc, err := store.Insert(perfCollection, map[string]any{
					"perf_id": uuid.NewString(),
					"padding": padding,
				})
				insertTimer.UpdateSince(start)
				if err != nil {
					log.Printf("(insert) - error inserting document: %v\n", err)
					continue
				}
				idsMu.Lock()
				ids = append(ids, doc.ID)
				idsMu.Unlock()
			}
		})
	})

	printResult("insert", insertResult, insertTimer)

	queryTimer := gometrics.NewTimer()
	queryResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("query") {
			return
		}

		q := query.Table(perfCollection).Limit(perfQueryLimit).Compile()

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				start := time.Now()
				_, err := store.Query(q)
				queryTimer.UpdateSince(start)
				if err != nil {
					log.Printf("(query) - error running query: %v\n", err)
				}
			}
		})
	})

	printResult("query", queryResult, queryTimer)

	pingTimer := gometrics.NewTimer()
	pingResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("ping") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				start := time.Now()
				err := store.Ping()
				pingTimer.UpdateSince(start)
				if err != nil {
					log.Printf("(ping) - error pinging server: %v\n", err)
				}
			}
		})
	})

	printResult("ping", pingResult, pingTimer)

	// Remove the benchmark documents
	if len(ids) > 0 {
		fmt.Printf("\ncleaning up %d document(s)...\n", len(ids))
		for _, id := range ids {
			if _, err := store.Delete(perfCollection, id); err != nil {
				log.Printf("(cleanup) - error deleting document: %v\n", err)
			}
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way,
// including the latency percentiles recorded by the timer
func printResult(test string, result testing.BenchmarkResult, timer gometrics.Timer) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	ps := timer.Percentiles([]float64{0.5, 0.9, 0.99})

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p90=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
}
