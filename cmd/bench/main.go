// Command bench runs a synthetic workload against one store and exposes
// optional pprof/Prometheus endpoints.
//
// The store is single-writer by contract, so the workers serialize on one
// mutex held for each whole call; the interesting numbers are per-op cost
// under a realistic Zipf key distribution and the resulting hit-rate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelikov/memocache/cache/sized"
	pmet "github.com/abelikov/memocache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int("cap", 100_000, "cache capacity (entries)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "memocache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build store ----
	c := sized.New(*capacity, sized.WithMetrics[string, string](metrics))

	// mu serializes every call, spanning the whole operation.
	var mu sync.Mutex

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Set("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	// ---- Load generation ----
	var (
		statMu                             sync.Mutex
		reads, writes, hits, misses, total uint64
	)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	keysMax := uint64(*keys - 1)
	readPctVal := *readPct

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is not
			// goroutine-safe) and local tallies merged at the end.
			localR := rand.New(rand.NewSource(*seed + int64(id)*9973))
			localZipf := rand.NewZipf(localR, *zipfS, *zipfV, keysMax)

			var lReads, lWrites, lHits, lMisses, lTotal uint64
			for ctx.Err() == nil {
				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				lTotal++
				if int(localR.Int31n(100)) < readPctVal {
					lReads++
					mu.Lock()
					_, ok := c.Get(k)
					mu.Unlock()
					if ok {
						lHits++
					} else {
						lMisses++
					}
				} else {
					lWrites++
					v := "v" + strconv.Itoa(localR.Int())
					mu.Lock()
					c.Set(k, v)
					mu.Unlock()
				}
			}

			statMu.Lock()
			reads += lReads
			writes += lWrites
			hits += lHits
			misses += lMisses
			total += lTotal
			statMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	hitRate := 0.0
	if reads > 0 {
		hitRate = float64(hits) / float64(reads) * 100
	}

	fmt.Printf("cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		*capacity, workersN, *keys, elapsed, *seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		total, float64(total)/elapsed.Seconds(), reads, writes)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hits, misses, hitRate)
	fmt.Printf("Len()=%d\n", c.Len())
}
