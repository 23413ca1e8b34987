// Package rpc chooses a JSON-RPC endpoint when several are configured.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/govtoken/internal/chain"
)

// ErrNoHealthyRPC is returned when no endpoint answered.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Strategy defines how an endpoint is chosen.
type Strategy string

const (
	StrategyFastest  Strategy = "fastest"  // lowest latency among fresh nodes
	StrategyFailover Strategy = "failover" // first fresh node in configured order

	// Nodes more than this many blocks behind the best are stale.
	staleBlockThreshold = 3
)

// ParseStrategy accepts "fastest" or "failover"; empty means fastest.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyFastest:
		return StrategyFastest, nil
	case StrategyFailover:
		return StrategyFailover, nil
	}
	return "", fmt.Errorf("unknown rpc strategy %q (want fastest or failover)", s)
}

// Endpoint is one probed URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// SplitURLs parses a comma-separated endpoint list, dropping blanks.
func SplitURLs(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Probe pings every URL in parallel. Results keep the input order.
func Probe(ctx context.Context, urls []string, timeout time.Duration) []Endpoint {
	results := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			latency, block, err := chain.NewEVMClient(u, timeout).Ping(pctx)
			results[idx] = Endpoint{URL: u, Latency: latency, BlockNumber: block, Err: err}
		}(i, url)
	}
	wg.Wait()
	return results
}

// Pick applies strategy to probed endpoints. Unhealthy and stale nodes are
// never chosen.
func Pick(endpoints []Endpoint, strategy Strategy) (Endpoint, error) {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	var fresh []Endpoint
	for _, e := range endpoints {
		if e.Healthy() && best-e.BlockNumber <= staleBlockThreshold {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}
	if strategy == StrategyFastest {
		sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].Latency < fresh[j].Latency })
	}
	return fresh[0], nil
}

// Select probes urls and picks one. A lone unreachable URL reports its own
// probe error alongside ErrNoHealthyRPC.
func Select(ctx context.Context, urls []string, strategy Strategy, timeout time.Duration) (Endpoint, error) {
	if len(urls) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}
	probed := Probe(ctx, urls, timeout)
	ep, err := Pick(probed, strategy)
	if err != nil && len(probed) == 1 {
		return probed[0], errors.Join(err, probed[0].Err)
	}
	return ep, err
}
