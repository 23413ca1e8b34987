package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind names a ledger event, matching the contract's event names.
type EventKind string

// Event kinds.
const (
	EventTransfer             EventKind = "Transfer"
	EventApproval             EventKind = "Approval"
	EventAirdrop              EventKind = "Airdrop"
	EventBurn                 EventKind = "Burn"
	EventPaused               EventKind = "Paused"
	EventUnpaused             EventKind = "Unpaused"
	EventOwnershipTransferred EventKind = "OwnershipTransferred"
)

// Event is one entry in the ledger's event log. Unused fields are zero.
type Event struct {
	Seq    uint64         `json:"seq"`
	Kind   EventKind      `json:"kind"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount,omitempty"`
}
