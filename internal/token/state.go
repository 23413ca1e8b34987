package token

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/ethereum/go-ethereum/common"
)

// State is the serialisable form of a Token.
type State struct {
	Name        string                                         `json:"name"`
	Symbol      string                                         `json:"symbol"`
	Decimals    uint8                                          `json:"decimals"`
	Cap         *big.Int                                       `json:"cap"`
	TotalSupply *big.Int                                       `json:"total_supply"`
	Owner       common.Address                                 `json:"owner"`
	Paused      bool                                           `json:"paused"`
	Balances    map[common.Address]*big.Int                    `json:"balances"`
	Allowances  map[common.Address]map[common.Address]*big.Int `json:"allowances,omitempty"`
	Events      []Event                                        `json:"events,omitempty"`
}

// Snapshot copies the full ledger.
func (t *Token) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := State{
		Name:        t.name,
		Symbol:      t.symbol,
		Decimals:    t.decimals,
		Cap:         new(big.Int).Set(t.cap),
		TotalSupply: new(big.Int).Set(t.supply),
		Owner:       t.owner,
		Paused:      t.paused,
		Balances:    make(map[common.Address]*big.Int, len(t.balances)),
		Events:      make([]Event, 0, len(t.events)),
	}
	for a, b := range t.balances {
		st.Balances[a] = new(big.Int).Set(b)
	}
	if len(t.allowances) > 0 {
		st.Allowances = make(map[common.Address]map[common.Address]*big.Int, len(t.allowances))
		for owner, inner := range t.allowances {
			for spender, v := range inner {
				writeAllowance(st.Allowances, owner, spender, v)
			}
		}
	}
	for _, e := range t.events {
		st.Events = append(st.Events, copyEvent(e))
	}
	return st
}

// Restore rebuilds a Token from a snapshot. Balances must add up to the
// recorded supply, which must not exceed the cap.
func Restore(st State, auth *access.Authorizer, opts ...Option) (*Token, error) {
	t, err := New(Params{
		Name:     st.Name,
		Symbol:   st.Symbol,
		Decimals: st.Decimals,
		Cap:      st.Cap,
		Owner:    st.Owner,
	}, auth, opts...)
	if err != nil {
		return nil, err
	}

	sum := new(big.Int)
	for a, b := range st.Balances {
		if b == nil || b.Sign() < 0 {
			return nil, fmt.Errorf("restore: %w: balance of %s", ErrInvalidAmount, a.Hex())
		}
		if b.Sign() == 0 {
			continue
		}
		t.balances[a] = new(big.Int).Set(b)
		sum.Add(sum, b)
	}
	supply := st.TotalSupply
	if supply == nil {
		supply = new(big.Int)
	}
	if sum.Cmp(supply) != 0 {
		return nil, fmt.Errorf("restore: balances sum to %s, supply is %s", sum, supply)
	}
	if supply.Cmp(t.cap) > 0 {
		return nil, &ExceededCapError{Increased: new(big.Int).Set(supply), Cap: t.Cap()}
	}
	t.supply = new(big.Int).Set(supply)

	for owner, inner := range st.Allowances {
		for spender, v := range inner {
			writeAllowance(t.allowances, owner, spender, v)
		}
	}
	t.paused = st.Paused
	for _, e := range st.Events {
		t.events = append(t.events, copyEvent(e))
		if e.Seq > t.seq {
			t.seq = e.Seq
		}
	}
	return t, nil
}
