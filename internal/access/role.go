package access

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Role is a named capability grant held by zero or more principals.
type Role uint8

// Roles. Admin can grant and revoke every other role unless delegated.
const (
	RoleAdmin Role = iota
	RoleMinter
	RoleBurner
	RoleTransferer
	RolePauser
	RoleOwnerChanger
	// RoleCapManager is MobitToken's single operator role. It is grantable
	// and readable on-chain but no local operation requires it.
	RoleCapManager
)

var roleNames = map[Role]string{
	RoleAdmin:        "DEFAULT_ADMIN_ROLE",
	RoleMinter:       "MINTER_ROLE",
	RoleBurner:       "BURNER_ROLE",
	RoleTransferer:   "TRANSFERER_ROLE",
	RolePauser:       "PAUSER_ROLE",
	RoleOwnerChanger: "OWNER_CHANGER_ROLE",
	RoleCapManager:   "CAP_MANAGER_ROLE",
}

// rolePreimages are the strings the contracts hash into role ids. Roles not
// listed here hash their constant name.
var rolePreimages = map[Role]string{
	RoleMinter:     "TOKEN_MINTER",
	RoleBurner:     "TOKEN_BURNER",
	RoleTransferer: "TOKEN_TRANSFER",
}

// AllRoles returns every role in declaration order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleMinter, RoleBurner, RoleTransferer, RolePauser, RoleOwnerChanger, RoleCapManager}
}

// String returns the on-chain constant name, e.g. "MINTER_ROLE".
func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ID returns the 32-byte role identifier used by the token contracts.
// The admin role is the zero hash; minter, burner and transferer hash
// TOKEN_MINTER, TOKEN_BURNER and TOKEN_TRANSFER; the rest hash their name.
func (r Role) ID() common.Hash {
	if r == RoleAdmin {
		return common.Hash{}
	}
	pre, ok := rolePreimages[r]
	if !ok {
		pre = r.String()
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(pre))
	return common.BytesToHash(h.Sum(nil))
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name or identifier.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole accepts a short name ("minter"), the constant name ("MINTER_ROLE"),
// the contract preimage ("TOKEN_MINTER") or the hex identifier.
func ParseRole(s string) (Role, error) {
	in := strings.TrimSpace(s)
	if strings.HasPrefix(in, "0x") || strings.HasPrefix(in, "0X") {
		id := common.HexToHash(in)
		for _, r := range AllRoles() {
			if r.ID() == id {
				return r, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrUnknownRole, s)
	}

	up := strings.ToUpper(strings.ReplaceAll(in, "-", "_"))
	switch up {
	case "ADMIN", "DEFAULT_ADMIN", "COUNCIL":
		return RoleAdmin, nil
	}
	for r, pre := range rolePreimages {
		if pre == up {
			return r, nil
		}
	}
	if !strings.HasSuffix(up, "_ROLE") {
		up += "_ROLE"
	}
	for r, n := range roleNames {
		if n == up {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownRole, s)
}
