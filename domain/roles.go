package domain

// Scope roles, from least to most privileged. The set is closed:
// membership rows never carry any other value.
const (
	RoleViewer  = "viewer"
	RoleMember  = "member"
	RoleManager = "manager"
	RoleOwner   = "owner"
)
