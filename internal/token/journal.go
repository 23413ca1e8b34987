package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type allowanceKey struct{ owner, spender common.Address }

// journal records the pre-operation value of everything an operation
// touches so that rollback restores the ledger exactly.
type journal struct {
	t *Token

	balances   map[common.Address]*big.Int // nil value: account had no entry
	allowances map[allowanceKey]*big.Int
	supply     *big.Int
	paused     bool
	owner      common.Address
	events     int
	seq        uint64
}

func (t *Token) begin() *journal {
	return &journal{
		t:          t,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
		supply:     t.supply,
		paused:     t.paused,
		owner:      t.owner,
		events:     len(t.events),
		seq:        t.seq,
	}
}

func (j *journal) touchBalance(a common.Address) {
	if _, seen := j.balances[a]; seen {
		return
	}
	j.balances[a] = j.t.balances[a] // may be nil
}

func (j *journal) credit(a common.Address, amount *big.Int) {
	j.touchBalance(a)
	j.t.balances[a] = new(big.Int).Add(j.t.balanceOf(a), amount)
}

func (j *journal) debit(a common.Address, amount *big.Int) error {
	bal := j.t.balanceOf(a)
	if bal.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Account: a, Balance: new(big.Int).Set(bal), Needed: new(big.Int).Set(amount)}
	}
	j.touchBalance(a)
	next := new(big.Int).Sub(bal, amount)
	if next.Sign() == 0 {
		delete(j.t.balances, a)
		return nil
	}
	j.t.balances[a] = next
	return nil
}

func (j *journal) setAllowance(owner, spender common.Address, amount *big.Int) {
	k := allowanceKey{owner, spender}
	if _, seen := j.allowances[k]; !seen {
		j.allowances[k] = j.t.allowances[owner][spender]
	}
	writeAllowance(j.t.allowances, owner, spender, amount)
}

func (j *journal) setPaused(p bool)             { j.t.paused = p }
func (j *journal) setOwner(owner common.Address) { j.t.owner = owner }

func (j *journal) rollback() {
	t := j.t
	for a, prev := range j.balances {
		if prev == nil {
			delete(t.balances, a)
		} else {
			t.balances[a] = prev
		}
	}
	for k, prev := range j.allowances {
		writeAllowance(t.allowances, k.owner, k.spender, prev)
	}
	t.supply = j.supply
	t.paused = j.paused
	t.owner = j.owner
	t.events = t.events[:j.events]
	t.seq = j.seq
}

// writeAllowance stores amount, dropping zero and nil entries.
func writeAllowance(m map[common.Address]map[common.Address]*big.Int, owner, spender common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		if inner, ok := m[owner]; ok {
			delete(inner, spender)
			if len(inner) == 0 {
				delete(m, owner)
			}
		}
		return
	}
	inner, ok := m[owner]
	if !ok {
		inner = make(map[common.Address]*big.Int)
		m[owner] = inner
	}
	inner[spender] = new(big.Int).Set(amount)
}
