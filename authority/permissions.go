package authority

import (
	"strings"
)

// SystemAdminPermissionID is the platform-wide super permission. A user
// holding it bypasses every scope check.
const SystemAdminPermissionID = "system:admin"

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasSystemPerm() bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), "system:") {
			return true
		}
	}
	return false
}
