package access

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
)

// State is the serialisable form of an Authorizer.
type State struct {
	Features Features                  `json:"features"`
	Members  map[Role][]common.Address `json:"members"`
	Admins   map[Role]Role             `json:"admins,omitempty"`
}

// Snapshot copies the current flags, membership and delegations.
func (a *Authorizer) Snapshot() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := State{
		Features: a.features,
		Members:  make(map[Role][]common.Address, len(a.members)),
	}
	for role, set := range a.members {
		st.Members[role] = sortedMembers(set)
	}
	if len(a.admins) > 0 {
		st.Admins = make(map[Role]Role, len(a.admins))
		for r, adm := range a.admins {
			st.Admins[r] = adm
		}
	}
	return st
}

// Restore rebuilds an Authorizer from a snapshot.
func Restore(st State, log *slog.Logger) (*Authorizer, error) {
	a := newAuthorizer(st.Features, log)
	for role, accounts := range st.Members {
		if err := checkRole(role); err != nil {
			return nil, err
		}
		for _, acc := range accounts {
			a.add(role, acc)
		}
	}
	for role, adm := range st.Admins {
		if err := checkRole(role); err != nil {
			return nil, err
		}
		if err := checkRole(adm); err != nil {
			return nil, err
		}
		if adm != RoleAdmin {
			a.admins[role] = adm
		}
	}
	return a, nil
}
