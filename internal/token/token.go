// Package token is a capped, pausable ERC-20 ledger whose privileged
// operations are gated by an access.Authorizer.
//
// Every operation is serialised on one mutex and runs against a journal, so
// a failure at any step (including a receive hook) leaves no partial effect.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/ethereum/go-ethereum/common"
)

// MaxUint256 is treated as an infinite allowance.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Params are fixed when the token is created.
type Params struct {
	Name     string
	Symbol   string
	Decimals uint8
	Cap      *big.Int
	Owner    common.Address
}

// ReceiveHook is called after an account is credited, inside the operation.
// It plays the part of a recipient contract's callback: reads see the
// credited state, while any mutating call made during the hook fails with
// ErrReentrantCall. Returning an error aborts and rolls back the whole
// operation.
type ReceiveHook func(ctx context.Context, to common.Address, amount *big.Int) error

// Option configures a Token.
type Option func(*Token)

// WithReceiveHook installs a hook run for every credited account.
func WithReceiveHook(h ReceiveHook) Option {
	return func(t *Token) { t.hook = h }
}

// WithLogger sets the logger used for ledger activity.
func WithLogger(l *slog.Logger) Option {
	return func(t *Token) {
		if l != nil {
			t.log = l
		}
	}
}

// Token is the ledger.
type Token struct {
	op     sync.Mutex   // serialises mutating operations, held across hooks
	mu     sync.RWMutex // guards the fields below, released while a hook runs
	inHook atomic.Bool

	name     string
	symbol   string
	decimals uint8
	cap      *big.Int

	supply     *big.Int
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	paused     bool
	owner      common.Address

	events []Event
	seq    uint64

	auth *access.Authorizer
	hook ReceiveHook
	log  *slog.Logger
}

// New creates an empty token.
func New(p Params, auth *access.Authorizer, opts ...Option) (*Token, error) {
	if auth == nil {
		return nil, fmt.Errorf("token: nil authorizer")
	}
	if p.Cap == nil || p.Cap.Sign() <= 0 {
		return nil, fmt.Errorf("%w: cap must be positive", ErrInvalidCap)
	}
	if p.Owner == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidOwner)
	}
	t := &Token{
		name:       p.Name,
		symbol:     p.Symbol,
		decimals:   p.Decimals,
		cap:        new(big.Int).Set(p.Cap),
		supply:     new(big.Int),
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		owner:      p.Owner,
		auth:       auth,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("component", "token", "symbol", p.Symbol)
	return t, nil
}

// Authorizer returns the authorizer gating this token.
func (t *Token) Authorizer() *access.Authorizer { return t.auth }

// --- reads ---

func (t *Token) Name() string    { return t.name }
func (t *Token) Symbol() string  { return t.symbol }
func (t *Token) Decimals() uint8 { return t.decimals }

// Cap returns the maximum total supply.
func (t *Token) Cap() *big.Int { return new(big.Int).Set(t.cap) }

// TotalSupply returns the amount currently minted.
func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.supply)
}

// BalanceOf returns the balance of account.
func (t *Token) BalanceOf(account common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.balanceOf(account))
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.allowance(owner, spender))
}

// Paused reports whether balance mutations are halted.
func (t *Token) Paused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Owner returns the current owner.
func (t *Token) Owner() common.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.owner
}

// Events returns the events with a sequence number above since.
func (t *Token) Events(since uint64) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Event
	for _, e := range t.events {
		if e.Seq > since {
			out = append(out, copyEvent(e))
		}
	}
	return out
}

// --- gated operations ---

// Mint creates amount tokens for to.
func (t *Token) Mint(ctx context.Context, caller, to common.Address, amount *big.Int) error {
	return t.run(ctx, "mint", func(ctx context.Context, j *journal) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if err := t.auth.Authorize(access.OpMint, caller); err != nil {
			return err
		}
		if to == (common.Address{}) {
			return ErrInvalidReceiver
		}
		if t.paused {
			return ErrEnforcedPause
		}
		next := new(big.Int).Add(t.supply, amount)
		if next.Cmp(t.cap) > 0 {
			return &ExceededCapError{Increased: next, Cap: new(big.Int).Set(t.cap)}
		}
		j.credit(to, amount)
		t.supply = next
		t.emit(Event{Kind: EventTransfer, To: to, Amount: amount})
		return t.received(ctx, to, amount)
	})
}

// Burn destroys amount tokens held by from.
func (t *Token) Burn(ctx context.Context, caller, from common.Address, amount *big.Int) error {
	return t.run(ctx, "burn", func(ctx context.Context, j *journal) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if err := t.auth.Authorize(access.OpBurn, caller); err != nil {
			return err
		}
		if from == (common.Address{}) {
			return ErrInvalidSender
		}
		if t.paused {
			return ErrEnforcedPause
		}
		if err := j.debit(from, amount); err != nil {
			return err
		}
		t.supply = new(big.Int).Sub(t.supply, amount)
		t.emit(Event{Kind: EventTransfer, From: from, Amount: amount})
		t.emit(Event{Kind: EventBurn, From: from, Amount: amount})
		return nil
	})
}

// Transfer moves amount from caller to to.
func (t *Token) Transfer(ctx context.Context, caller, to common.Address, amount *big.Int) error {
	return t.run(ctx, "transfer", func(ctx context.Context, j *journal) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if err := t.auth.Authorize(access.OpTransfer, caller); err != nil {
			return err
		}
		return t.move(ctx, j, caller, to, amount)
	})
}

// Approve lets spender move up to amount of owner's tokens. It is not gated.
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, amount *big.Int) error {
	return t.run(ctx, "approve", func(ctx context.Context, j *journal) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if owner == (common.Address{}) {
			return ErrInvalidOwner
		}
		if spender == (common.Address{}) {
			return ErrInvalidSpender
		}
		j.setAllowance(owner, spender, amount)
		t.emit(Event{Kind: EventApproval, From: owner, To: spender, Amount: amount})
		return nil
	})
}

// TransferFrom moves amount from from to to, spending spender's allowance.
func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) error {
	return t.run(ctx, "transferFrom", func(ctx context.Context, j *journal) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if err := t.auth.Authorize(access.OpTransfer, spender); err != nil {
			return err
		}
		allowed := t.allowance(from, spender)
		if allowed.Cmp(MaxUint256) != 0 {
			if allowed.Cmp(amount) < 0 {
				return &InsufficientAllowanceError{Spender: spender, Allowance: new(big.Int).Set(allowed), Needed: amount}
			}
			j.setAllowance(from, spender, new(big.Int).Sub(allowed, amount))
		}
		return t.move(ctx, j, from, to, amount)
	})
}

// Airdrop mints amount to every recipient, all or nothing.
func (t *Token) Airdrop(ctx context.Context, caller common.Address, recipients []common.Address, amount *big.Int) error {
	return t.run(ctx, "airdrop", func(ctx context.Context, j *journal) error {
		if err := checkAmount(amount); err != nil {
			return err
		}
		if len(recipients) == 0 {
			return ErrNoRecipients
		}
		if err := t.auth.Authorize(access.OpMint, caller); err != nil {
			return err
		}
		if t.paused {
			return ErrEnforcedPause
		}
		for i, to := range recipients {
			if to == (common.Address{}) {
				return fmt.Errorf("%w: recipient %d", ErrInvalidReceiver, i)
			}
		}
		total := new(big.Int).Mul(amount, big.NewInt(int64(len(recipients))))
		if new(big.Int).Add(t.supply, total).Cmp(t.cap) > 0 {
			return ErrAirdropExceedsCap
		}
		for _, to := range recipients {
			j.credit(to, amount)
			t.supply = new(big.Int).Add(t.supply, amount)
			t.emit(Event{Kind: EventTransfer, To: to, Amount: amount})
			t.emit(Event{Kind: EventAirdrop, To: to, Amount: amount})
			if err := t.received(ctx, to, amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// Pause halts all balance mutations.
func (t *Token) Pause(ctx context.Context, caller common.Address) error {
	return t.run(ctx, "pause", func(ctx context.Context, j *journal) error {
		if err := t.auth.Authorize(access.OpPause, caller); err != nil {
			return err
		}
		if t.paused {
			return ErrEnforcedPause
		}
		j.setPaused(true)
		t.emit(Event{Kind: EventPaused, From: caller})
		return nil
	})
}

// Unpause resumes balance mutations.
func (t *Token) Unpause(ctx context.Context, caller common.Address) error {
	return t.run(ctx, "unpause", func(ctx context.Context, j *journal) error {
		if err := t.auth.Authorize(access.OpUnpause, caller); err != nil {
			return err
		}
		if !t.paused {
			return ErrExpectedPause
		}
		j.setPaused(false)
		t.emit(Event{Kind: EventUnpaused, From: caller})
		return nil
	})
}

// TransferOwnership records newOwner as the token owner.
func (t *Token) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	return t.run(ctx, "transferOwnership", func(ctx context.Context, j *journal) error {
		if err := t.auth.Authorize(access.OpChangeOwner, caller); err != nil {
			return err
		}
		if newOwner == (common.Address{}) {
			return ErrInvalidOwner
		}
		prev := t.owner
		j.setOwner(newOwner)
		t.emit(Event{Kind: EventOwnershipTransferred, From: prev, To: newOwner})
		return nil
	})
}

// --- internal ---

type guardKey struct{}

// run serialises fn, rejects re-entry and rolls back every journaled change
// when fn fails. A call is re-entrant when its ctx carries this token's marker
// or when it arrives while a receive hook is running.
func (t *Token) run(ctx context.Context, op string, fn func(context.Context, *journal) error) error {
	if g, _ := ctx.Value(guardKey{}).(*Token); g == t || t.inHook.Load() {
		return ErrReentrantCall
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.op.Lock()
	defer t.op.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()

	j := t.begin()
	if err := fn(context.WithValue(ctx, guardKey{}, t), j); err != nil {
		j.rollback()
		t.log.Debug("reverted", "op", op, "err", err)
		return err
	}
	t.log.Info("executed", "op", op, "supply", t.supply.String())
	return nil
}

func (t *Token) move(ctx context.Context, j *journal, from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) {
		return ErrInvalidSender
	}
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	if t.paused {
		return ErrEnforcedPause
	}
	if err := j.debit(from, amount); err != nil {
		return err
	}
	j.credit(to, amount)
	t.emit(Event{Kind: EventTransfer, From: from, To: to, Amount: amount})
	return t.received(ctx, to, amount)
}

// received runs the hook with the state lock released so the hook can read
// the ledger. t.op stays held, so no other operation interleaves.
func (t *Token) received(ctx context.Context, to common.Address, amount *big.Int) error {
	if t.hook == nil {
		return nil
	}
	t.inHook.Store(true)
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.inHook.Store(false)
	}()
	return t.hook(ctx, to, new(big.Int).Set(amount))
}

func (t *Token) emit(e Event) {
	t.seq++
	e.Seq = t.seq
	if e.Amount != nil {
		e.Amount = new(big.Int).Set(e.Amount)
	}
	t.events = append(t.events, e)
}

func (t *Token) balanceOf(a common.Address) *big.Int {
	if b, ok := t.balances[a]; ok {
		return b
	}
	return new(big.Int)
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}
	return new(big.Int)
}

func checkAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return ErrInvalidAmount
	}
	if v.Cmp(MaxUint256) > 0 {
		return fmt.Errorf("%w: exceeds uint256", ErrInvalidAmount)
	}
	return nil
}

func copyEvent(e Event) Event {
	if e.Amount != nil {
		e.Amount = new(big.Int).Set(e.Amount)
	}
	return e
}
