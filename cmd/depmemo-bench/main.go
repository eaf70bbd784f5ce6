// Command depmemo-bench drives a Cache under synthetic concurrent load and
// reports how many calls hit the Imprint tree versus recomputed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpyw/depmemo"
	"github.com/mpyw/depmemo/memoize"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	workers := flag.Int("workers", 8, "number of concurrent callers")
	calls := flag.Int("calls", 10000, "total calls to issue")
	variants := flag.Int("variants", 4, "number of distinct argument shapes in the call mix")
	flag.Parse()

	cache := memoize.New[int]()
	var misses int64

	compute := func(view *depmemo.View) (int, error) {
		atomic.AddInt64(&misses, 1)
		timeout, _ := view.Get("timeout")
		return timeout.(int) * 2, nil
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)

	start := time.Now()
	for i := 0; i < *calls; i++ {
		i := i
		g.Go(func() error {
			arg := map[string]any{
				"timeout": i % *variants,
				"noise":   fmt.Sprintf("call-%d", i), // never read, must not affect cache keying
			}
			_, err := cache.Call(arg, compute)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("calls=%d misses=%d hit-rate=%.1f%% elapsed=%s\n",
		*calls, misses, 100*(1-float64(misses)/float64(*calls)), elapsed)
	return nil
}
