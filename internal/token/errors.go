package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger errors.
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidReceiver       = errors.New("invalid receiver")
	ErrInvalidSender         = errors.New("invalid sender")
	ErrInvalidSpender        = errors.New("invalid spender")
	ErrInvalidOwner          = errors.New("invalid owner")
	ErrInvalidCap            = errors.New("invalid cap")
	ErrExceededCap           = errors.New("exceeded cap")
	ErrAirdropExceedsCap     = errors.New("airdrop would exceed max supply")
	ErrNoRecipients          = errors.New("no recipients")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrEnforcedPause         = errors.New("enforced pause")
	ErrExpectedPause         = errors.New("expected pause")
	ErrReentrantCall         = errors.New("reentrant call")
)

// ExceededCapError reports a mint that would push supply above the cap.
type ExceededCapError struct {
	Increased *big.Int // supply after the mint
	Cap       *big.Int
}

func (e *ExceededCapError) Error() string {
	return fmt.Sprintf("%s: supply %s > cap %s", ErrExceededCap, e.Increased, e.Cap)
}

func (e *ExceededCapError) Unwrap() error { return ErrExceededCap }

// InsufficientBalanceError reports a debit larger than the account balance.
type InsufficientBalanceError struct {
	Account common.Address
	Balance *big.Int
	Needed  *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: %s has %s, needs %s", ErrInsufficientBalance, e.Account.Hex(), e.Balance, e.Needed)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InsufficientAllowanceError reports a transferFrom larger than the allowance.
type InsufficientAllowanceError struct {
	Spender   common.Address
	Allowance *big.Int
	Needed    *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("%s: %s may spend %s, needs %s", ErrInsufficientAllowance, e.Spender.Hex(), e.Allowance, e.Needed)
}

func (e *InsufficientAllowanceError) Unwrap() error { return ErrInsufficientAllowance }
