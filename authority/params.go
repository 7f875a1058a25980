package authority

// ParamBag is the merged view over the named parameter sources of one
// request. Lookup order is fixed: path over query over body.
type ParamBag struct {
	Path  map[string]string
	Query map[string]string
	Body  map[string]string
}

func (b *ParamBag) Get(name string) string {
	if v, found := b.Path[name]; found && v != "" {
		return v
	}
	if v, found := b.Query[name]; found && v != "" {
		return v
	}
	if v, found := b.Body[name]; found && v != "" {
		return v
	}
	return ""
}

// Has reports whether any source carries the parameter, even with an
// empty value. Scope inference keys on presence, value extraction on
// non-emptiness.
func (b *ParamBag) Has(name string) bool {
	if _, found := b.Path[name]; found {
		return true
	}
	if _, found := b.Query[name]; found {
		return true
	}
	if _, found := b.Body[name]; found {
		return true
	}
	return false
}
