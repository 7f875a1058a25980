package authority

type ScopeKind string

const (
	ScopeOrganization ScopeKind = "organization"
	ScopeWorkspace    ScopeKind = "workspace"
	ScopeProject      ScopeKind = "project"
)

// ScopeDescriptor names the permission boundary an operation is checked
// against and which request parameter carries the scope identifier.
type ScopeDescriptor struct {
	Kind         ScopeKind
	LocatorParam string
}

// InferScope derives a scope descriptor from the merged request
// parameters when an operation declares none. The priority reflects the
// containment hierarchy: the most specific organization-identifying
// field wins over incidental generic id/slug fields, which by
// convention refer to a project.
func InferScope(params *ParamBag) (ScopeDescriptor, bool) {
	if params.Has("organizationId") {
		return ScopeDescriptor{Kind: ScopeOrganization, LocatorParam: "organizationId"}, true
	}
	if params.Has("workspaceId") {
		return ScopeDescriptor{Kind: ScopeWorkspace, LocatorParam: "workspaceId"}, true
	}
	if params.Has("projectId") {
		return ScopeDescriptor{Kind: ScopeProject, LocatorParam: "projectId"}, true
	}
	if params.Has("id") && params.Has("slug") {
		return ScopeDescriptor{Kind: ScopeProject, LocatorParam: "slug"}, true
	}
	if params.Has("id") {
		return ScopeDescriptor{Kind: ScopeProject, LocatorParam: "id"}, true
	}
	return ScopeDescriptor{}, false
}
