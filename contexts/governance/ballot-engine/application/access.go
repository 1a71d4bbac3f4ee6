package application

import (
	"strings"

	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
)

// AccessController holds the single admin identity fixed at system
// initialization. It is passed explicitly into every use case that gates an
// operation on admin rights; there is no ambient or global admin lookup.
type AccessController struct {
	admin string
}

func NewAccessController(admin string) AccessController {
	return AccessController{admin: strings.TrimSpace(admin)}
}

func (a AccessController) Admin() string {
	return a.admin
}

// RequireAdmin fails with ErrUnauthorized unless the caller is the admin.
// Account identities compare case-insensitively.
func (a AccessController) RequireAdmin(caller string) error {
	if a.admin == "" || !strings.EqualFold(strings.TrimSpace(caller), a.admin) {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

// IsAdmin reports whether the caller is the admin without failing.
func (a AccessController) IsAdmin(caller string) bool {
	return a.RequireAdmin(caller) == nil
}
