// Package access implements the feature-gated role authorization core shared
// by every privileged token operation.
//
// A decision is made in two steps. The feature flag for the operation's
// category is checked first and fails for every caller, the administrator
// included. Only then is the caller's role membership consulted.
package access

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Config is supplied once when the authorizer is created.
type Config struct {
	Features Features
	Admin    common.Address // council; receives the admin and operator roles
	Logger   *slog.Logger
}

// Authorizer holds feature flags and role membership.
type Authorizer struct {
	mu       sync.RWMutex
	features Features
	members  map[Role]map[common.Address]struct{}
	admins   map[Role]Role // role -> role that administers it; absent means RoleAdmin
	log      *slog.Logger
}

// councilRoles are granted to the admin address at construction.
var councilRoles = []Role{RoleAdmin, RoleMinter, RolePauser, RoleOwnerChanger}

// New creates an Authorizer. The admin address must not be zero.
func New(cfg Config) (*Authorizer, error) {
	if cfg.Admin == (common.Address{}) {
		return nil, fmt.Errorf("admin: %w", ErrZeroAddress)
	}
	a := newAuthorizer(cfg.Features, cfg.Logger)
	for _, r := range councilRoles {
		a.add(r, cfg.Admin)
	}
	a.log.Debug("authorizer created", "admin", cfg.Admin.Hex(), "features", cfg.Features)
	return a, nil
}

func newAuthorizer(fs Features, log *slog.Logger) *Authorizer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Authorizer{
		features: fs,
		members:  make(map[Role]map[common.Address]struct{}),
		admins:   make(map[Role]Role),
		log:      log.With("component", "access"),
	}
}

// Authorize decides whether caller may perform op. It returns nil on allow,
// a *FeatureNotEnabledError when op's category is disabled, or an
// *UnauthorizedRoleError when caller lacks the required role.
func (a *Authorizer) Authorize(op Operation, caller common.Address) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownOperation, uint8(op))
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.features.Enabled(op.Feature()) {
		a.log.Info("denied", "op", op.String(), "caller", caller.Hex(), "reason", "feature disabled")
		return &FeatureNotEnabledError{Operation: op}
	}
	role := op.RequiredRole()
	if !a.has(role, caller) {
		a.log.Info("denied", "op", op.String(), "caller", caller.Hex(), "reason", "missing role", "role", role.String())
		return &UnauthorizedRoleError{Caller: caller, Operation: op, Role: role}
	}
	a.log.Debug("allowed", "op", op.String(), "caller", caller.Hex())
	return nil
}

// IsFeatureEnabled reports whether op's category is enabled.
func (a *Authorizer) IsFeatureEnabled(op Operation) bool {
	return a.FeatureEnabled(op.Feature())
}

// FeatureEnabled reports the flag for a category.
func (a *Authorizer) FeatureEnabled(f Feature) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.features.Enabled(f)
}

// Features returns the current flags.
func (a *Authorizer) Features() Features {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.features
}

// SetFeatures replaces the flags. Only admins may call it; the change applies
// to every subsequent Authorize call.
func (a *Authorizer) SetFeatures(fs Features, by common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.has(RoleAdmin, by) {
		return a.denyAdmin(RoleAdmin, by)
	}
	a.log.Info("features updated", "by", by.Hex(), "from", a.features, "to", fs)
	a.features = fs
	return nil
}

// HasRole reports whether account holds role.
func (a *Authorizer) HasRole(role Role, account common.Address) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.has(role, account)
}

// GetRoleAdmin returns the role whose holders may grant and revoke role.
func (a *Authorizer) GetRoleAdmin(role Role) Role {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.adminOf(role)
}

// Members returns the holders of role sorted by address.
func (a *Authorizer) Members(role Role) []common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sortedMembers(a.members[role])
}

// GrantRole adds account to role. Granting a held role is a no-op.
func (a *Authorizer) GrantRole(role Role, account, by common.Address) error {
	if err := checkRole(role); err != nil {
		return err
	}
	if account == (common.Address{}) {
		return fmt.Errorf("grant %s: %w", role, ErrZeroAddress)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.canAdminister(role, by) {
		return a.denyAdmin(role, by)
	}
	if a.add(role, account) {
		a.log.Info("role granted", "role", role.String(), "account", account.Hex(), "by", by.Hex())
	}
	return nil
}

// RevokeRole removes account from role. Revoking an absent member is a no-op.
func (a *Authorizer) RevokeRole(role Role, account, by common.Address) error {
	if err := checkRole(role); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.canAdminister(role, by) {
		return a.denyAdmin(role, by)
	}
	if a.remove(role, account) {
		a.log.Info("role revoked", "role", role.String(), "account", account.Hex(), "by", by.Hex())
	}
	return nil
}

// RenounceRole lets an account drop one of its own roles.
func (a *Authorizer) RenounceRole(role Role, account, by common.Address) error {
	if err := checkRole(role); err != nil {
		return err
	}
	if account != by {
		return &InvalidRoleAdministratorError{Caller: by, Role: role}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.remove(role, account) {
		a.log.Info("role renounced", "role", role.String(), "account", account.Hex())
	}
	return nil
}

// SetRoleAdmin delegates administration of role to holders of adminRole.
func (a *Authorizer) SetRoleAdmin(role, adminRole Role, by common.Address) error {
	if err := checkRole(role); err != nil {
		return err
	}
	if err := checkRole(adminRole); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.has(RoleAdmin, by) {
		return a.denyAdmin(role, by)
	}
	prev := a.adminOf(role)
	if adminRole == RoleAdmin {
		delete(a.admins, role)
	} else {
		a.admins[role] = adminRole
	}
	a.log.Info("role admin changed", "role", role.String(), "from", prev.String(), "to", adminRole.String(), "by", by.Hex())
	return nil
}

// --- internal, callers hold a.mu ---

func (a *Authorizer) has(role Role, account common.Address) bool {
	_, ok := a.members[role][account]
	return ok
}

func (a *Authorizer) add(role Role, account common.Address) bool {
	set, ok := a.members[role]
	if !ok {
		set = make(map[common.Address]struct{})
		a.members[role] = set
	}
	if _, held := set[account]; held {
		return false
	}
	set[account] = struct{}{}
	return true
}

func (a *Authorizer) remove(role Role, account common.Address) bool {
	set := a.members[role]
	if _, held := set[account]; !held {
		return false
	}
	delete(set, account)
	if len(set) == 0 {
		delete(a.members, role)
	}
	return true
}

func (a *Authorizer) adminOf(role Role) Role {
	if r, ok := a.admins[role]; ok {
		return r
	}
	return RoleAdmin
}

// canAdminister: global admins always qualify, plus holders of a delegated admin role.
func (a *Authorizer) canAdminister(role Role, by common.Address) bool {
	return a.has(RoleAdmin, by) || a.has(a.adminOf(role), by)
}

func (a *Authorizer) denyAdmin(role Role, by common.Address) error {
	a.log.Info("denied", "caller", by.Hex(), "role", role.String(), "reason", "not role administrator")
	return &InvalidRoleAdministratorError{Caller: by, Role: role}
}

func checkRole(r Role) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return nil
}

func sortedMembers(set map[common.Address]struct{}) []common.Address {
	out := make([]common.Address, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
