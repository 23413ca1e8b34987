package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// governanceABI is the read surface shared by MobitToken and GovernanceToken.
const governanceABI = `[
	{"type":"function","name":"hasRole","stateMutability":"view","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getRoleAdmin","stateMutability":"view","inputs":[{"name":"role","type":"bytes32"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"cap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// ErrNoData is returned when a call succeeds with an empty result, which is
// what a missing function looks like on contracts without a fallback.
var ErrNoData = errors.New("contract returned no data")

// Caller is the RPC surface RoleReader needs.
type Caller interface {
	CallContract(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
}

// RoleReader queries role and pause state of a deployed token.
type RoleReader struct {
	caller   Caller
	contract common.Address
	abi      abi.ABI
}

// NewRoleReader binds a reader to contract.
func NewRoleReader(caller Caller, contract common.Address) (*RoleReader, error) {
	parsed, err := abi.JSON(strings.NewReader(governanceABI))
	if err != nil {
		return nil, fmt.Errorf("parsing governance ABI: %w", err)
	}
	return &RoleReader{caller: caller, contract: contract, abi: parsed}, nil
}

// Contract returns the bound address.
func (r *RoleReader) Contract() common.Address { return r.contract }

// HasRole calls hasRole(bytes32,address).
func (r *RoleReader) HasRole(ctx context.Context, role access.Role, account common.Address) (bool, error) {
	out, err := r.read(ctx, "hasRole", [32]byte(role.ID()), account)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetRoleAdmin calls getRoleAdmin(bytes32). Identifiers that match no known
// role are returned as-is with ok=false.
func (r *RoleReader) GetRoleAdmin(ctx context.Context, role access.Role) (admin access.Role, id common.Hash, ok bool, err error) {
	out, err := r.read(ctx, "getRoleAdmin", [32]byte(role.ID()))
	if err != nil {
		return 0, common.Hash{}, false, err
	}
	id = common.Hash(*abi.ConvertType(out[0], new([32]byte)).(*[32]byte))
	admin, perr := access.ParseRole(id.Hex())
	return admin, id, perr == nil, nil
}

// Paused calls paused().
func (r *RoleReader) Paused(ctx context.Context) (bool, error) {
	out, err := r.read(ctx, "paused")
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Owner calls owner().
func (r *RoleReader) Owner(ctx context.Context) (common.Address, error) {
	out, err := r.read(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// Cap calls cap().
func (r *RoleReader) Cap(ctx context.Context) (*big.Int, error) {
	return r.readUint(ctx, "cap")
}

// BalanceOf calls balanceOf(address).
func (r *RoleReader) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return r.readUint(ctx, "balanceOf", account)
}

// Status is a snapshot of a deployed token.
type Status struct {
	Contract    common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Cap         *big.Int // nil when the contract has no cap()
	Paused      bool
	Owner       *common.Address // nil when the contract has no owner()
}

// Status reads the token's metadata, supply and pause state. cap() and
// owner() are optional since plain AccessControl tokens lack them.
func (r *RoleReader) Status(ctx context.Context) (*Status, error) {
	st := &Status{Contract: r.contract}

	name, err := r.readString(ctx, "name")
	if err != nil {
		return nil, err
	}
	st.Name = name
	if st.Symbol, err = r.readString(ctx, "symbol"); err != nil {
		return nil, err
	}
	out, err := r.read(ctx, "decimals")
	if err != nil {
		return nil, err
	}
	st.Decimals = *abi.ConvertType(out[0], new(uint8)).(*uint8)
	if st.TotalSupply, err = r.readUint(ctx, "totalSupply"); err != nil {
		return nil, err
	}
	if st.Paused, err = r.Paused(ctx); err != nil {
		return nil, err
	}

	switch c, err := r.Cap(ctx); {
	case err == nil:
		st.Cap = c
	case !optional(err):
		return nil, err
	}
	switch o, err := r.Owner(ctx); {
	case err == nil:
		st.Owner = &o
	case !optional(err):
		return nil, err
	}
	return st, nil
}

// Members checks every known role for account.
func (r *RoleReader) Members(ctx context.Context, account common.Address) ([]access.Role, error) {
	var held []access.Role
	for _, role := range access.AllRoles() {
		ok, err := r.HasRole(ctx, role, account)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", role, err)
		}
		if ok {
			held = append(held, role)
		}
	}
	return held, nil
}

// --- internal ---

func (r *RoleReader) read(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	raw, err := r.caller.CallContract(ctx, r.contract, data)
	if err != nil {
		return nil, fmt.Errorf("%s(): %w", method, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s(): %w", method, ErrNoData)
	}
	out, err := r.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	return out, nil
}

func (r *RoleReader) readUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := r.read(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (r *RoleReader) readString(ctx context.Context, method string) (string, error) {
	out, err := r.read(ctx, method)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func optional(err error) bool {
	return errors.Is(err, ErrNoData) || errors.Is(err, ErrReverted)
}
