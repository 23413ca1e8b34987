package access

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Identifiers as deployed: GT1 grants these literals, MobitToken reverts
// with the cap manager one.
const (
	tokenMinterID   = "0x262c70cb68844873654dc54487b634cb00850c1e13c785cd0d96a2b89b829472"
	tokenBurnerID   = "0xb7cd08e7968c8eb3cceee719dc902b03ff20ef36607309c7b72f07cdb4dbcd3d"
	tokenTransferID = "0x60f91c4983cd584ea4c48485b610cc900d867e1f806ae08ae922a90379466d35"
	capManagerID    = "0x027f9f680a0c6704fd9796b55c67fe885252243966ecb05a88f3e7873c845d9a"
)

func TestRoleIDs(t *testing.T) {
	assert.Equal(t, common.Hash{}, RoleAdmin.ID())
	assert.Equal(t, tokenMinterID, RoleMinter.ID().Hex())
	assert.Equal(t, tokenBurnerID, RoleBurner.ID().Hex())
	assert.Equal(t, tokenTransferID, RoleTransferer.ID().Hex())
	assert.Equal(t, capManagerID, RoleCapManager.ID().Hex())
	// keccak256("PAUSER_ROLE")
	assert.Equal(t,
		"0x65d7a28e3265b37a6474929f336521b332c1681b933f6cb9f3376673440d862a",
		RolePauser.ID().Hex())

	seen := map[common.Hash]Role{}
	for _, r := range AllRoles() {
		prev, dup := seen[r.ID()]
		assert.False(t, dup, "%s collides with %s", r, prev)
		seen[r.ID()] = r
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"minter", RoleMinter},
		{"MINTER_ROLE", RoleMinter},
		{"burner", RoleBurner},
		{"transferer", RoleTransferer},
		{"pauser", RolePauser},
		{"owner-changer", RoleOwnerChanger},
		{"admin", RoleAdmin},
		{"council", RoleAdmin},
		{"DEFAULT_ADMIN_ROLE", RoleAdmin},
		{"0x0000000000000000000000000000000000000000000000000000000000000000", RoleAdmin},
		{RolePauser.ID().Hex(), RolePauser},
		{"TOKEN_MINTER", RoleMinter},
		{"token_burner", RoleBurner},
		{"TOKEN_TRANSFER", RoleTransferer},
		{"cap-manager", RoleCapManager},
		{"CAP_MANAGER_ROLE", RoleCapManager},
		{tokenMinterID, RoleMinter},
		{tokenBurnerID, RoleBurner},
		{tokenTransferID, RoleTransferer},
		{capManagerID, RoleCapManager},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoleUnknown(t *testing.T) {
	_, err := ParseRole("staker")
	assert.ErrorIs(t, err, ErrUnknownRole)

	// keccak256("MINTER_ROLE") is not what the contracts use
	_, err = ParseRole("0x9f2df0fed2c77648de5860a4cc508cd0818c85b8b8a1ab4ceeef8d981c8956a6")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleJSONMapKeys(t *testing.T) {
	in := map[Role]Role{RoleTransferer: RoleMinter}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"TRANSFERER_ROLE":"MINTER_ROLE"}`, string(data))

	var out map[Role]Role
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestParseOperation(t *testing.T) {
	for _, op := range AllOperations() {
		got, err := ParseOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	got, err := ParseOperation("transfer_ownership")
	require.NoError(t, err)
	assert.Equal(t, OpChangeOwner, got)

	_, err = ParseOperation("stake")
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestParseFeature(t *testing.T) {
	for _, f := range AllFeatures() {
		got, err := ParseFeature(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFeature("canChangeOwner")
	require.NoError(t, err)
	assert.Equal(t, FeatureChangeOwner, got)
}

func TestFeaturesWith(t *testing.T) {
	fs := Features{}
	for _, f := range AllFeatures() {
		assert.False(t, fs.Enabled(f))
		assert.True(t, fs.With(f, true).Enabled(f))
	}
	assert.Equal(t, AllEnabled(), Features{}.
		With(FeatureMint, true).With(FeatureBurn, true).With(FeaturePause, true).
		With(FeatureStake, true).With(FeatureTransfer, true).With(FeatureChangeOwner, true))
}
