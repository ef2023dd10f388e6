package domain

// BootstrapPolicy holds the single designated administrator identity. It is
// consulted at account creation and by the deletion/demotion guards; nothing
// else compares telegram ids directly.
type BootstrapPolicy struct {
	AdminTelegramID string
}

func NewBootstrapPolicy(adminTelegramID string) BootstrapPolicy {
	return BootstrapPolicy{AdminTelegramID: adminTelegramID}
}

// IsBootstrapAdmin reports whether the external identity is the fixed
// bootstrap administrator.
func (p BootstrapPolicy) IsBootstrapAdmin(telegramID string) bool {
	return p.AdminTelegramID != "" && telegramID == p.AdminTelegramID
}

// InitialFlags returns the role and approval flags a newly created account
// receives. Only the bootstrap administrator starts privileged and approved.
func (p BootstrapPolicy) InitialFlags(telegramID string) (isAdmin, isAllowed bool) {
	admin := p.IsBootstrapAdmin(telegramID)
	return admin, admin
}

// CanDelete reports whether the account may be removed.
func (p BootstrapPolicy) CanDelete(u *User) bool {
	return !p.IsBootstrapAdmin(u.TelegramID)
}

// CanDemote reports whether the account may lose its admin or approval flag.
func (p BootstrapPolicy) CanDemote(u *User) bool {
	return !p.IsBootstrapAdmin(u.TelegramID)
}
