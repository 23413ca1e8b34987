package chain

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr   = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	councilAddr = common.HexToAddress("0x717cbCF10015709A38c9429F8b2626129896B369")
)

// fakeContract answers eth_call by method selector.
type fakeContract struct {
	t       *testing.T
	reader  *RoleReader
	answers map[string][]byte
	calls   []string
	err     error
}

func newFake(t *testing.T) (*fakeContract, *RoleReader) {
	t.Helper()
	f := &fakeContract{t: t, answers: map[string][]byte{}}
	r, err := NewRoleReader(f, tokenAddr)
	require.NoError(t, err)
	f.reader = r
	return f, r
}

func (f *fakeContract) answer(method string, values ...any) {
	f.t.Helper()
	m, ok := f.reader.abi.Methods[method]
	require.True(f.t, ok, method)
	out, err := m.Outputs.Pack(values...)
	require.NoError(f.t, err)
	f.answers[hex.EncodeToString(m.ID)] = out
}

func (f *fakeContract) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	require.Equal(f.t, tokenAddr, to)
	if f.err != nil {
		return nil, f.err
	}
	sel := hex.EncodeToString(data[:4])
	f.calls = append(f.calls, sel)
	return f.answers[sel], nil
}

// ---------------------------------------------------------------------------
// role queries
// ---------------------------------------------------------------------------

func TestHasRole(t *testing.T) {
	f, r := newFake(t)
	f.answer("hasRole", true)

	ok, err := r.HasRole(context.Background(), access.RoleMinter, councilAddr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"91d14854"}, f.calls, "hasRole(bytes32,address) selector")
}

func TestHasRolePacksRoleID(t *testing.T) {
	_, r := newFake(t)
	data, err := r.abi.Pack("hasRole", [32]byte(access.RoleMinter.ID()), councilAddr)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMinter.ID().Bytes(), data[4:36])
	assert.Equal(t, common.LeftPadBytes(councilAddr.Bytes(), 32), data[36:68])
}

func TestGetRoleAdminKnown(t *testing.T) {
	f, r := newFake(t)
	f.answer("getRoleAdmin", [32]byte{})

	admin, id, ok, err := r.GetRoleAdmin(context.Background(), access.RoleBurner)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, access.RoleAdmin, admin)
	assert.Equal(t, common.Hash{}, id)
}

func TestGetRoleAdminUnknownID(t *testing.T) {
	f, r := newFake(t)
	custom := common.HexToHash("0xdeadbeef")
	f.answer("getRoleAdmin", [32]byte(custom))

	_, id, ok, err := r.GetRoleAdmin(context.Background(), access.RoleBurner)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, custom, id)
}

func TestMembers(t *testing.T) {
	f, r := newFake(t)
	f.answer("hasRole", true)

	held, err := r.Members(context.Background(), councilAddr)
	require.NoError(t, err)
	assert.Equal(t, access.AllRoles(), held)
}

func TestRoleReaderPropagatesRPCError(t *testing.T) {
	f, r := newFake(t)
	f.err = &RPCError{Code: -32000, Message: "header not found"}

	_, err := r.HasRole(context.Background(), access.RoleAdmin, councilAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hasRole()")
}

func TestEmptyResultIsNoData(t *testing.T) {
	_, r := newFake(t)
	_, err := r.Paused(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

func TestStatusFull(t *testing.T) {
	f, r := newFake(t)
	supply, _ := new(big.Int).SetString("1000000000000000000000", 10)
	maxSupply, _ := new(big.Int).SetString("500000000000000000000000000", 10)
	f.answer("name", "Mobit Token")
	f.answer("symbol", "MTK")
	f.answer("decimals", uint8(18))
	f.answer("totalSupply", supply)
	f.answer("paused", true)
	f.answer("cap", maxSupply)
	f.answer("owner", councilAddr)

	st, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mobit Token", st.Name)
	assert.Equal(t, "MTK", st.Symbol)
	assert.Equal(t, uint8(18), st.Decimals)
	assert.Equal(t, 0, supply.Cmp(st.TotalSupply))
	assert.True(t, st.Paused)
	require.NotNil(t, st.Cap)
	assert.Equal(t, 0, maxSupply.Cmp(st.Cap))
	require.NotNil(t, st.Owner)
	assert.Equal(t, councilAddr, *st.Owner)
}

func TestStatusWithoutCapOrOwner(t *testing.T) {
	f, r := newFake(t)
	f.answer("name", "Governance Token")
	f.answer("symbol", "GT1")
	f.answer("decimals", uint8(18))
	f.answer("totalSupply", big.NewInt(0))
	f.answer("paused", false)

	st, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Cap)
	assert.Nil(t, st.Owner)
	assert.Equal(t, tokenAddr, st.Contract)
}

func TestStatusMissingNameFails(t *testing.T) {
	_, r := newFake(t)
	_, err := r.Status(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}
