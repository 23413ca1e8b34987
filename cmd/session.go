package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/store"
	"github.com/Mohsinsiddi/govtoken/internal/token"
	"github.com/Mohsinsiddi/govtoken/internal/ui"
	"github.com/Mohsinsiddi/govtoken/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

var errAborted = errors.New("aborted")

// keystoreBackend is replaced by tests with an in-memory keystore.
var keystoreBackend = func() wallet.KeystoreBackend {
	return wallet.DefaultKeystore(cfg.Dir())
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(keystoreBackend()),
	)
}

func deploymentStore() *store.JSONStore {
	return store.NewJSONStore(cfg.DeploymentsDir())
}

// lockWait bounds how long a mutating command waits for another govtoken
// process to release the deployment.
var lockWait = 10 * time.Second

// session is one loaded deployment. Mutating commands open it with
// openLocked and call commit after the ledger accepted the operation.
type session struct {
	store   store.Store
	record  *store.Deployment
	tok     *token.Token
	wallets *wallet.Manager
	unlock  func() error
}

func selectedToken() (string, error) {
	name := tokenName
	if name == "" {
		name = cfg.DefaultToken
	}
	if name == "" {
		return "", fmt.Errorf("no token selected: pass --token <name> or deploy one first")
	}
	return name, nil
}

// openSession loads the selected deployment for reading.
func openSession() (*session, error) {
	name, err := selectedToken()
	if err != nil {
		return nil, err
	}
	return loadSession(deploymentStore(), name)
}

// openLocked loads the selected deployment and holds its lock until release,
// so concurrent govtoken processes cannot interleave load and save.
func openLocked(ctx context.Context) (*session, error) {
	name, err := selectedToken()
	if err != nil {
		return nil, err
	}
	st := deploymentStore()
	lctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := st.Lock(lctx, name)
	if err != nil {
		return nil, err
	}
	s, err := loadSession(st, name)
	if err != nil {
		unlock() //nolint:errcheck
		return nil, err
	}
	s.unlock = unlock
	return s, nil
}

func loadSession(st store.Store, name string) (*session, error) {
	d, err := st.Load(name)
	if err != nil {
		return nil, err
	}
	tok, err := store.Open(d, logger.With("token", name))
	if err != nil {
		return nil, err
	}
	return &session{store: st, record: d, tok: tok, wallets: newWalletManager()}, nil
}

// release drops the deployment lock taken by openLocked.
func (s *session) release() {
	if s.unlock == nil {
		return
	}
	if err := s.unlock(); err != nil {
		logger.Warn("releasing deployment lock", "token", s.record.Name, "err", err)
	}
	s.unlock = nil
}

func (s *session) auth() *access.Authorizer { return s.tok.Authorizer() }

func (s *session) commit() error {
	d := store.Capture(s.record.Name, s.tok)
	d.CreatedAt = s.record.CreatedAt
	if err := s.store.Save(d); err != nil {
		return fmt.Errorf("saving %s: %w", s.record.Name, err)
	}
	s.record = d
	return nil
}

// caller resolves --as (or the default wallet) to a proven address.
func (s *session) caller() (common.Address, error) {
	return actingAs(s.wallets, s.auth())
}

// actingAs picks the acting wallet and proves its key controls the address.
// When nothing is configured and a terminal is attached, a picker is shown;
// auth, when non-nil, labels each wallet with the roles it holds.
func actingAs(mgr *wallet.Manager, auth *access.Authorizer) (common.Address, error) {
	name := actAs
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name == "" {
		if w := mgr.Default(); w != nil {
			name = w.Name
		}
	}
	if name == "" && interactive() {
		picked, err := pickWallet(mgr, auth)
		if err != nil {
			return common.Address{}, err
		}
		name = picked
	}
	if name == "" {
		return common.Address{}, fmt.Errorf("no wallet selected: pass --as <wallet>")
	}

	w, err := findWallet(mgr, name)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := wallet.ProveOwnership(w, mgr.Keystore())
	if err != nil {
		return common.Address{}, fmt.Errorf("acting as %s: %w", w.Name, err)
	}
	logger.Debug("acting as", "wallet", w.Name, "address", addr.Hex())
	return addr, nil
}

// findWallet looks a wallet up by name, or by address among signing wallets.
func findWallet(mgr *wallet.Manager, nameOrAddr string) (*wallet.Wallet, error) {
	if !common.IsHexAddress(nameOrAddr) {
		return mgr.Get(nameOrAddr)
	}
	want := common.HexToAddress(nameOrAddr)
	ws, err := mgr.List()
	if err != nil {
		return nil, err
	}
	for _, w := range ws {
		if w.Addr() == want && w.Type == wallet.TypeSigning {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: no signing wallet for %s", wallet.ErrWalletNotFound, want.Hex())
}

func pickWallet(mgr *wallet.Manager, auth *access.Authorizer) (string, error) {
	ws, err := mgr.List()
	if err != nil {
		return "", err
	}
	var items []ui.PickerItem
	for _, w := range ws {
		if w.Type != wallet.TypeSigning {
			continue
		}
		items = append(items, ui.PickerItem{
			Label:    w.Name,
			SubLabel: ui.TruncateAddr(w.Address),
			Badge:    rolesBadge(auth, w.Addr()),
			Value:    w.Name,
		})
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no signing wallets: create one with `govtoken wallet new <name>`")
	}
	return ui.PickItem("Act as", items)
}

func rolesBadge(auth *access.Authorizer, addr common.Address) string {
	if auth == nil {
		return ""
	}
	var held []string
	for _, r := range access.AllRoles() {
		if auth.HasRole(r, addr) {
			held = append(held, r.String())
		}
	}
	return strings.Join(held, " ")
}

// resolveAccount accepts a wallet name or a hex address.
func resolveAccount(mgr *wallet.Manager, s string) (common.Address, error) {
	addr, err := mgr.Resolve(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("account %q: not an address or known wallet", s)
	}
	return addr, nil
}

// parseAmount reads a whole-token decimal amount. "max" is accepted only
// where allowMax is set and means an infinite allowance.
func parseAmount(s string, decimals uint8, allowMax bool) (*big.Int, error) {
	if allowMax && strings.EqualFold(strings.TrimSpace(s), "max") {
		return new(big.Int).Set(token.MaxUint256), nil
	}
	return token.ParseUnits(s, decimals)
}

// formatAmount renders base units as "<amount> <symbol>".
func formatAmount(tok *token.Token, v *big.Int) string {
	if v.Cmp(token.MaxUint256) == 0 {
		return "unlimited"
	}
	return token.FormatUnits(v, tok.Decimals()) + " " + tok.Symbol()
}

// hintFor suggests the command that would resolve err.
func hintFor(err error) string {
	var featErr *access.FeatureNotEnabledError
	var roleErr *access.UnauthorizedRoleError
	var adminErr *access.InvalidRoleAdministratorError
	var capErr *token.ExceededCapError
	switch {
	case errors.As(err, &featErr):
		return fmt.Sprintf("an administrator can enable it: govtoken feature enable %s", featErr.Operation.Feature())
	case errors.As(err, &roleErr):
		return fmt.Sprintf("an administrator can grant it: govtoken role grant %s %s", roleErr.Role, roleErr.Caller.Hex())
	case errors.As(err, &adminErr):
		return fmt.Sprintf("only holders of the role's admin role may change %s", adminErr.Role)
	case errors.As(err, &capErr):
		return fmt.Sprintf("cap is %s base units; supply would reach %s", capErr.Cap, capErr.Increased)
	case errors.Is(err, token.ErrEnforcedPause):
		return "the token is paused: govtoken unpause"
	case errors.Is(err, token.ErrExpectedPause):
		return "the token is not paused"
	case errors.Is(err, store.ErrDeploymentNotFound):
		return "list deployments with: govtoken info --all"
	case errors.Is(err, wallet.ErrWalletNotFound):
		return "list wallets with: govtoken wallet list"
	}
	return ""
}
