package access

import (
	"fmt"
	"strings"
)

// Operation is one of the gated token operations.
type Operation uint8

// Gated operations.
const (
	OpMint Operation = iota + 1
	OpBurn
	OpTransfer
	OpPause
	OpUnpause
	OpChangeOwner
)

var opNames = map[Operation]string{
	OpMint:        "mint",
	OpBurn:        "burn",
	OpTransfer:    "transfer",
	OpPause:       "pause",
	OpUnpause:     "unpause",
	OpChangeOwner: "change-owner",
}

// AllOperations returns every gated operation in declaration order.
func AllOperations() []Operation {
	return []Operation{OpMint, OpBurn, OpTransfer, OpPause, OpUnpause, OpChangeOwner}
}

func (op Operation) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("Operation(%d)", uint8(op))
}

// Valid reports whether op is one of the gated operations.
func (op Operation) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// Feature returns the flag category that gates op. Pause and Unpause share one.
func (op Operation) Feature() Feature {
	switch op {
	case OpMint:
		return FeatureMint
	case OpBurn:
		return FeatureBurn
	case OpTransfer:
		return FeatureTransfer
	case OpPause, OpUnpause:
		return FeaturePause
	case OpChangeOwner:
		return FeatureChangeOwner
	}
	return featureUnknown
}

// RequiredRole returns the role a caller must hold to perform op.
func (op Operation) RequiredRole() Role {
	switch op {
	case OpMint:
		return RoleMinter
	case OpBurn:
		return RoleBurner
	case OpTransfer:
		return RoleTransferer
	case OpPause, OpUnpause:
		return RolePauser
	case OpChangeOwner:
		return RoleOwnerChanger
	}
	return RoleAdmin
}

// ParseOperation parses an operation name such as "mint" or "change-owner".
func ParseOperation(s string) (Operation, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	in = strings.ReplaceAll(in, "_", "-")
	switch in {
	case "changeowner", "transfer-ownership", "owner":
		return OpChangeOwner, nil
	}
	for op, n := range opNames {
		if n == in {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownOperation, s)
}
