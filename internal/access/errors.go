package access

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors. The typed errors below unwrap to these.
var (
	ErrFeatureNotEnabled        = errors.New("feature not enabled")
	ErrUnauthorizedRole         = errors.New("unauthorized role")
	ErrInvalidRoleAdministrator = errors.New("invalid role administrator")
	ErrZeroAddress              = errors.New("zero address")
	ErrUnknownRole              = errors.New("unknown role")
	ErrUnknownOperation         = errors.New("unknown operation")
)

// FeatureNotEnabledError is returned when an operation's category is disabled.
type FeatureNotEnabledError struct {
	Operation Operation
}

func (e *FeatureNotEnabledError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFeatureNotEnabled, e.Operation)
}

func (e *FeatureNotEnabledError) Unwrap() error { return ErrFeatureNotEnabled }

// UnauthorizedRoleError is returned when the caller lacks the role for an operation.
type UnauthorizedRoleError struct {
	Caller    common.Address
	Operation Operation
	Role      Role
}

func (e *UnauthorizedRoleError) Error() string {
	return fmt.Sprintf("%s: %s is missing %s for %s", ErrUnauthorizedRole, e.Caller.Hex(), e.Role, e.Operation)
}

func (e *UnauthorizedRoleError) Unwrap() error { return ErrUnauthorizedRole }

// InvalidRoleAdministratorError is returned when a caller tries to administer
// a role it has no authority over.
type InvalidRoleAdministratorError struct {
	Caller common.Address
	Role   Role
}

func (e *InvalidRoleAdministratorError) Error() string {
	return fmt.Sprintf("%s: %s cannot administer %s", ErrInvalidRoleAdministrator, e.Caller.Hex(), e.Role)
}

func (e *InvalidRoleAdministratorError) Unwrap() error { return ErrInvalidRoleAdministrator }
