package token_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	council    = common.HexToAddress("0x717cbCF10015709A38c9429F8b2626129896B369")
	minter     = common.HexToAddress("0x2000000000000000000000000000000000000001")
	burner     = common.HexToAddress("0x2000000000000000000000000000000000000002")
	transferer = common.HexToAddress("0x2000000000000000000000000000000000000003")
	user1      = common.HexToAddress("0x2000000000000000000000000000000000000004")
	user2      = common.HexToAddress("0x2000000000000000000000000000000000000005")
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// units returns n whole tokens at 18 decimals.
func units(t *testing.T, n string) *big.Int {
	t.Helper()
	v, err := token.ParseUnits(n, 18)
	require.NoError(t, err)
	return v
}

func newToken(t *testing.T, fs access.Features, opts ...token.Option) *token.Token {
	t.Helper()
	auth, err := access.New(access.Config{Features: fs, Admin: council})
	require.NoError(t, err)
	require.NoError(t, auth.GrantRole(access.RoleMinter, minter, council))
	require.NoError(t, auth.GrantRole(access.RoleBurner, burner, council))
	require.NoError(t, auth.GrantRole(access.RoleTransferer, transferer, council))

	tok, err := token.New(token.Params{
		Name:     "GovernanceToken",
		Symbol:   "GT",
		Decimals: 18,
		Cap:      units(t, "1000000"),
		Owner:    council,
	}, auth, opts...)
	require.NoError(t, err)
	return tok
}

// ---------------------------------------------------------------------------
// deployment
// ---------------------------------------------------------------------------

func TestNewSetsMetadata(t *testing.T) {
	tok := newToken(t, access.AllEnabled())

	assert.Equal(t, "GovernanceToken", tok.Name())
	assert.Equal(t, "GT", tok.Symbol())
	assert.Equal(t, uint8(18), tok.Decimals())
	assert.Equal(t, units(t, "1000000"), tok.Cap())
	assert.Equal(t, council, tok.Owner())
	assert.Zero(t, tok.TotalSupply().Sign())
	assert.False(t, tok.Paused())
}

func TestNewValidation(t *testing.T) {
	auth, err := access.New(access.Config{Admin: council})
	require.NoError(t, err)

	_, err = token.New(token.Params{Cap: big.NewInt(0), Owner: council}, auth)
	assert.ErrorIs(t, err, token.ErrInvalidCap)

	_, err = token.New(token.Params{Cap: big.NewInt(1)}, auth)
	assert.ErrorIs(t, err, token.ErrInvalidOwner)

	_, err = token.New(token.Params{Cap: big.NewInt(1), Owner: council}, nil)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// minting
// ---------------------------------------------------------------------------

func TestMint(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()

	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))
	assert.Equal(t, units(t, "100"), tok.BalanceOf(user1))
	assert.Equal(t, units(t, "100"), tok.TotalSupply())
}

func TestMintDisabled(t *testing.T) {
	tok := newToken(t, access.AllEnabled().With(access.FeatureMint, false))

	err := tok.Mint(context.Background(), minter, user1, units(t, "100"))
	assert.ErrorIs(t, err, access.ErrFeatureNotEnabled)
	assert.Zero(t, tok.BalanceOf(user1).Sign())
}

func TestMintWithoutRole(t *testing.T) {
	tok := newToken(t, access.AllEnabled())

	err := tok.Mint(context.Background(), user1, user1, units(t, "100"))
	assert.ErrorIs(t, err, access.ErrUnauthorizedRole)
}

func TestMintExceedsCap(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	over := new(big.Int).Add(units(t, "1000000"), units(t, "1"))

	err := tok.Mint(context.Background(), minter, user1, over)
	require.Error(t, err)

	var capErr *token.ExceededCapError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, over, capErr.Increased)
	assert.Equal(t, units(t, "1000000"), capErr.Cap)
	assert.Zero(t, tok.TotalSupply().Sign())
}

func TestMintUpToCap(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	require.NoError(t, tok.Mint(context.Background(), minter, user1, units(t, "1000000")))
	assert.ErrorIs(t, tok.Mint(context.Background(), minter, user1, big.NewInt(1)), token.ErrExceededCap)
}

func TestMintRejectsBadInput(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()

	assert.ErrorIs(t, tok.Mint(ctx, minter, user1, big.NewInt(-1)), token.ErrInvalidAmount)
	assert.ErrorIs(t, tok.Mint(ctx, minter, user1, nil), token.ErrInvalidAmount)
	assert.ErrorIs(t, tok.Mint(ctx, minter, common.Address{}, big.NewInt(1)), token.ErrInvalidReceiver)
}

// ---------------------------------------------------------------------------
// burning
// ---------------------------------------------------------------------------

func TestBurn(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))

	require.NoError(t, tok.Burn(ctx, burner, user1, units(t, "50")))
	assert.Equal(t, units(t, "50"), tok.BalanceOf(user1))
	assert.Equal(t, units(t, "50"), tok.TotalSupply())

	evs := tok.Events(0)
	last := evs[len(evs)-1]
	assert.Equal(t, token.EventBurn, last.Kind)
	assert.Equal(t, user1, last.From)
	assert.Equal(t, units(t, "50"), last.Amount)
}

func TestBurnDisabled(t *testing.T) {
	tok := newToken(t, access.AllEnabled().With(access.FeatureBurn, false))
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))

	assert.ErrorIs(t, tok.Burn(ctx, burner, user1, units(t, "50")), access.ErrFeatureNotEnabled)
	assert.Equal(t, units(t, "100"), tok.BalanceOf(user1))
}

func TestBurnWithoutRole(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	assert.ErrorIs(t, tok.Burn(context.Background(), user1, user1, units(t, "50")), access.ErrUnauthorizedRole)
}

func TestBurnInsufficientBalance(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "10")))

	err := tok.Burn(ctx, burner, user1, units(t, "11"))
	var balErr *token.InsufficientBalanceError
	require.True(t, errors.As(err, &balErr))
	assert.Equal(t, user1, balErr.Account)
	assert.Equal(t, units(t, "10"), tok.BalanceOf(user1))
}

// ---------------------------------------------------------------------------
// transfer
// ---------------------------------------------------------------------------

func TestTransferFromWithRole(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))

	require.NoError(t, tok.Approve(ctx, user1, transferer, units(t, "50")))
	require.NoError(t, tok.TransferFrom(ctx, transferer, user1, user2, units(t, "50")))

	assert.Equal(t, units(t, "50"), tok.BalanceOf(user2))
	assert.Equal(t, units(t, "50"), tok.BalanceOf(user1))
	assert.Zero(t, tok.Allowance(user1, transferer).Sign())
}

func TestTransferFromInsufficientAllowance(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))
	require.NoError(t, tok.Approve(ctx, user1, transferer, units(t, "10")))

	err := tok.TransferFrom(ctx, transferer, user1, user2, units(t, "50"))
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
	assert.Equal(t, units(t, "10"), tok.Allowance(user1, transferer))
}

func TestTransferFromInfiniteAllowance(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))
	require.NoError(t, tok.Approve(ctx, user1, transferer, token.MaxUint256))

	require.NoError(t, tok.TransferFrom(ctx, transferer, user1, user2, units(t, "30")))
	assert.Equal(t, token.MaxUint256, tok.Allowance(user1, transferer))
}

func TestTransferDisabled(t *testing.T) {
	tok := newToken(t, access.AllEnabled().With(access.FeatureTransfer, false))
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, transferer, units(t, "100")))

	assert.ErrorIs(t, tok.Transfer(ctx, transferer, user2, units(t, "50")), access.ErrFeatureNotEnabled)
}

func TestTransferWithoutRole(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))

	assert.ErrorIs(t, tok.Transfer(ctx, user1, user2, units(t, "50")), access.ErrUnauthorizedRole)
	assert.Equal(t, units(t, "100"), tok.BalanceOf(user1))
}

func TestTransfer(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, transferer, units(t, "100")))

	require.NoError(t, tok.Transfer(ctx, transferer, user2, units(t, "40")))
	assert.Equal(t, units(t, "60"), tok.BalanceOf(transferer))
	assert.Equal(t, units(t, "40"), tok.BalanceOf(user2))
}

func TestApproveValidation(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()

	assert.ErrorIs(t, tok.Approve(ctx, common.Address{}, user2, big.NewInt(1)), token.ErrInvalidOwner)
	assert.ErrorIs(t, tok.Approve(ctx, user1, common.Address{}, big.NewInt(1)), token.ErrInvalidSpender)
}

// ---------------------------------------------------------------------------
// airdrop
// ---------------------------------------------------------------------------

func TestAirdrop(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	amount := units(t, "100")

	require.NoError(t, tok.Airdrop(context.Background(), minter, []common.Address{user1, user2}, amount))
	assert.Equal(t, amount, tok.BalanceOf(user1))
	assert.Equal(t, amount, tok.BalanceOf(user2))

	var drops []token.Event
	for _, e := range tok.Events(0) {
		if e.Kind == token.EventAirdrop {
			drops = append(drops, e)
		}
	}
	require.Len(t, drops, 2)
	assert.Equal(t, user1, drops[0].To)
	assert.Equal(t, user2, drops[1].To)
	assert.Equal(t, amount, drops[1].Amount)
}

func TestAirdropExceedsCap(t *testing.T) {
	tok := newToken(t, access.AllEnabled())

	err := tok.Airdrop(context.Background(), minter, []common.Address{user1, user2}, units(t, "1000000"))
	assert.ErrorIs(t, err, token.ErrAirdropExceedsCap)
	assert.EqualError(t, err, "airdrop would exceed max supply")
	assert.Zero(t, tok.TotalSupply().Sign())
	assert.Empty(t, tok.Events(0))
}

func TestAirdropValidation(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()

	assert.ErrorIs(t, tok.Airdrop(ctx, minter, nil, big.NewInt(1)), token.ErrNoRecipients)
	assert.ErrorIs(t, tok.Airdrop(ctx, minter, []common.Address{user1, {}}, big.NewInt(1)), token.ErrInvalidReceiver)
	assert.ErrorIs(t, tok.Airdrop(ctx, user1, []common.Address{user1}, big.NewInt(1)), access.ErrUnauthorizedRole)
	assert.Zero(t, tok.BalanceOf(user1).Sign())
}

// ---------------------------------------------------------------------------
// pause
// ---------------------------------------------------------------------------

func TestPauseUnpause(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()

	require.NoError(t, tok.Pause(ctx, council))
	assert.True(t, tok.Paused())
	assert.ErrorIs(t, tok.Pause(ctx, council), token.ErrEnforcedPause)

	require.NoError(t, tok.Unpause(ctx, council))
	assert.False(t, tok.Paused())
	assert.ErrorIs(t, tok.Unpause(ctx, council), token.ErrExpectedPause)
}

func TestPauseDisabled(t *testing.T) {
	tok := newToken(t, access.AllEnabled().With(access.FeaturePause, false))
	ctx := context.Background()

	assert.ErrorIs(t, tok.Pause(ctx, council), access.ErrFeatureNotEnabled)
	assert.ErrorIs(t, tok.Unpause(ctx, council), access.ErrFeatureNotEnabled)
}

func TestPauseWithoutRole(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	assert.ErrorIs(t, tok.Pause(context.Background(), user1), access.ErrUnauthorizedRole)
	assert.False(t, tok.Paused())
}

func TestPausedBlocksBalanceChanges(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, transferer, units(t, "1000")))
	require.NoError(t, tok.Pause(ctx, council))

	assert.ErrorIs(t, tok.Transfer(ctx, transferer, user2, units(t, "1000")), token.ErrEnforcedPause)
	assert.ErrorIs(t, tok.Mint(ctx, minter, user1, units(t, "1")), token.ErrEnforcedPause)
	assert.ErrorIs(t, tok.Burn(ctx, burner, transferer, units(t, "1")), token.ErrEnforcedPause)

	require.NoError(t, tok.Unpause(ctx, council))
	require.NoError(t, tok.Transfer(ctx, transferer, user2, units(t, "1000")))
	assert.Equal(t, units(t, "1000"), tok.BalanceOf(user2))
}

// ---------------------------------------------------------------------------
// ownership
// ---------------------------------------------------------------------------

func TestTransferOwnership(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	require.NoError(t, tok.TransferOwnership(context.Background(), council, user1))
	assert.Equal(t, user1, tok.Owner())
}

func TestTransferOwnershipDisabled(t *testing.T) {
	tok := newToken(t, access.AllEnabled().With(access.FeatureChangeOwner, false))
	err := tok.TransferOwnership(context.Background(), council, user1)
	assert.ErrorIs(t, err, access.ErrFeatureNotEnabled)
	assert.Equal(t, council, tok.Owner())
}

func TestTransferOwnershipToZero(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	assert.ErrorIs(t, tok.TransferOwnership(context.Background(), council, common.Address{}), token.ErrInvalidOwner)
}

// ---------------------------------------------------------------------------
// atomicity & reentrancy
// ---------------------------------------------------------------------------

func TestHookFailureRollsBackAirdrop(t *testing.T) {
	boom := errors.New("recipient rejected")
	hook := func(_ context.Context, to common.Address, _ *big.Int) error {
		if to == user2 {
			return boom
		}
		return nil
	}
	tok := newToken(t, access.AllEnabled(), token.WithReceiveHook(hook))

	err := tok.Airdrop(context.Background(), minter, []common.Address{user1, user2}, units(t, "5"))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, tok.BalanceOf(user1).Sign())
	assert.Zero(t, tok.TotalSupply().Sign())
	assert.Empty(t, tok.Events(0))
}

func TestReentrantMintRejected(t *testing.T) {
	var (
		tok       *token.Token
		reentered error
	)
	hook := func(ctx context.Context, to common.Address, amount *big.Int) error {
		reentered = tok.Mint(ctx, minter, to, amount)
		return reentered
	}
	tok = newToken(t, access.AllEnabled(), token.WithReceiveHook(hook))

	err := tok.Mint(context.Background(), minter, user1, units(t, "100"))
	assert.ErrorIs(t, reentered, token.ErrReentrantCall)
	assert.ErrorIs(t, err, token.ErrReentrantCall)
	assert.Zero(t, tok.BalanceOf(user1).Sign())
}

// within fails the test if fn does not return in time.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("operation did not return within %s", d)
	}
}

func TestHookReadsLedger(t *testing.T) {
	var (
		tok    *token.Token
		seen   *big.Int
		supply *big.Int
		paused bool
	)
	hook := func(_ context.Context, to common.Address, _ *big.Int) error {
		seen = tok.BalanceOf(to)
		supply = tok.TotalSupply()
		paused = tok.Paused()
		_ = tok.Events(0)
		_ = tok.Snapshot()
		return nil
	}
	tok = newToken(t, access.AllEnabled(), token.WithReceiveHook(hook))

	within(t, 2*time.Second, func() {
		assert.NoError(t, tok.Mint(context.Background(), minter, user1, units(t, "7")))
	})
	assert.Equal(t, units(t, "7"), seen)
	assert.Equal(t, units(t, "7"), supply)
	assert.False(t, paused)
	assert.Equal(t, units(t, "7"), tok.BalanceOf(user1))
}

func TestHookReadsThenRejects(t *testing.T) {
	var tok *token.Token
	hook := func(_ context.Context, to common.Address, _ *big.Int) error {
		if tok.BalanceOf(to).Sign() > 0 {
			return errors.New("no thanks")
		}
		return nil
	}
	tok = newToken(t, access.AllEnabled(), token.WithReceiveHook(hook))

	within(t, 2*time.Second, func() {
		assert.Error(t, tok.Mint(context.Background(), minter, user1, units(t, "1")))
	})
	assert.Zero(t, tok.BalanceOf(user1).Sign())
	assert.Zero(t, tok.TotalSupply().Sign())
}

func TestReentrantMintWithoutMarkerRejected(t *testing.T) {
	var (
		tok       *token.Token
		reentered error
	)
	hook := func(_ context.Context, to common.Address, amount *big.Int) error {
		reentered = tok.Mint(context.Background(), minter, to, amount)
		return reentered
	}
	tok = newToken(t, access.AllEnabled(), token.WithReceiveHook(hook))

	within(t, 2*time.Second, func() {
		err := tok.Mint(context.Background(), minter, user1, units(t, "100"))
		assert.ErrorIs(t, err, token.ErrReentrantCall)
	})
	assert.ErrorIs(t, reentered, token.ErrReentrantCall)
	assert.Zero(t, tok.BalanceOf(user1).Sign())
}

func TestCancelledContext(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tok.Mint(ctx, minter, user1, big.NewInt(1)), context.Canceled)
}

func TestEventsSince(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, big.NewInt(1)))
	require.NoError(t, tok.Mint(ctx, minter, user2, big.NewInt(2)))

	all := tok.Events(0)
	require.Len(t, all, 2)
	later := tok.Events(all[0].Seq)
	require.Len(t, later, 1)
	assert.Equal(t, user2, later[0].To)
}

// ---------------------------------------------------------------------------
// snapshot / restore
// ---------------------------------------------------------------------------

func TestSnapshotRestore(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	ctx := context.Background()
	require.NoError(t, tok.Mint(ctx, minter, user1, units(t, "100")))
	require.NoError(t, tok.Approve(ctx, user1, transferer, units(t, "7")))
	require.NoError(t, tok.Pause(ctx, council))

	restored, err := token.Restore(tok.Snapshot(), tok.Authorizer())
	require.NoError(t, err)

	assert.Equal(t, units(t, "100"), restored.BalanceOf(user1))
	assert.Equal(t, units(t, "100"), restored.TotalSupply())
	assert.Equal(t, units(t, "7"), restored.Allowance(user1, transferer))
	assert.True(t, restored.Paused())
	assert.Equal(t, tok.Events(0), restored.Events(0))
}

func TestRestoreRejectsInconsistentSupply(t *testing.T) {
	tok := newToken(t, access.AllEnabled())
	require.NoError(t, tok.Mint(context.Background(), minter, user1, units(t, "100")))

	st := tok.Snapshot()
	st.TotalSupply = units(t, "99")
	_, err := token.Restore(st, tok.Authorizer())
	assert.Error(t, err)
}
