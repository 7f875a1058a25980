package authority

import "sync"

// OperationPolicy is the per-operation authorization metadata: the roles
// accepted for the operation and, optionally, an explicit scope
// descriptor overriding inference.
type OperationPolicy struct {
	RequiredRoles []string
	Scope         *ScopeDescriptor
}

var (
	policiesMutex sync.RWMutex
	policies      = map[string]OperationPolicy{}
)

// RegisterPolicy binds a policy to an operation key ("METHOD routePath").
// Registering the same key again replaces the earlier binding, so the
// most specific declaration wins. All registrations happen during route
// setup at process start; the table is read-only afterwards.
func RegisterPolicy(method, routePath string, policy OperationPolicy) {
	policiesMutex.Lock()
	defer policiesMutex.Unlock()
	policies[method+" "+routePath] = policy
}

func FindPolicy(method, routePath string) (OperationPolicy, bool) {
	policiesMutex.RLock()
	defer policiesMutex.RUnlock()
	policy, found := policies[method+" "+routePath]
	return policy, found
}
