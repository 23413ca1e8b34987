// airdrop-bench: runs the large-airdrop scenario against an in-memory
// ledger. Several minters airdrop concurrently in batches of increasing size,
// then the table shows per-batch latency and the final supply.
//
// Run from the module root:
//
//	go run ./scripts/airdrop-bench
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/token"
	"github.com/Mohsinsiddi/govtoken/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// ── config ────────────────────────────────────────────────────────────────────

var council = common.HexToAddress("0x717cbCF10015709A38c9429F8b2626129896B369")

var batches = []int{10, 100, 500}

const (
	minters  = 4
	decimals = 18
	perDrop  = "100"
	capWhole = "500000000"
)

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	minter     int
	recipients int
	took       time.Duration
	err        string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	auth, err := access.New(access.Config{Features: access.AllEnabled(), Admin: council})
	if err != nil {
		fail(err)
	}
	maxSupply, err := token.ParseUnits(capWhole, decimals)
	if err != nil {
		fail(err)
	}
	amount, err := token.ParseUnits(perDrop, decimals)
	if err != nil {
		fail(err)
	}
	tok, err := token.New(token.Params{
		Name: "Mobit Token", Symbol: "MTK", Decimals: decimals,
		Cap: maxSupply, Owner: council,
	}, auth, token.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))))
	if err != nil {
		fail(err)
	}

	minterAddrs, err := wallet.RandomAddresses(minters)
	if err != nil {
		fail(err)
	}
	for _, m := range minterAddrs {
		if err := auth.GrantRole(access.RoleMinter, m, council); err != nil {
			fail(err)
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	start := time.Now()
	for i, m := range minterAddrs {
		for _, n := range batches {
			wg.Add(1)
			go func(i int, m common.Address, n int) {
				defer wg.Done()

				r := result{minter: i, recipients: n}
				recipients, err := wallet.RandomAddresses(n)
				if err != nil {
					r.err = err.Error()
				} else {
					t0 := time.Now()
					if err := tok.Airdrop(context.Background(), m, recipients, amount); err != nil {
						r.err = err.Error()
					}
					r.took = time.Since(t0)
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(i, m, n)
		}
	}
	wg.Wait()

	printTable(results)
	fmt.Printf("\nwall time %s, total supply %s MTK, %d events\n",
		time.Since(start).Round(time.Millisecond),
		token.FormatUnits(tok.TotalSupply(), decimals),
		len(tok.Events(0)))

	want := new(big.Int).Mul(amount, big.NewInt(int64(sum(batches)*minters)))
	if tok.TotalSupply().Cmp(want) != 0 {
		fail(fmt.Errorf("supply %s, expected %s", tok.TotalSupply(), want))
	}
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.minter != b.minter {
			return a.minter < b.minter
		}
		return a.recipients < b.recipients
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MINTER\tRECIPIENTS\tTOOK\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 6)+"\t"+strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 12)+"\t"+strings.Repeat("-", 12))
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", r.minter, r.recipients, r.took.Round(time.Microsecond), r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "airdrop-bench:", err)
	os.Exit(1)
}
