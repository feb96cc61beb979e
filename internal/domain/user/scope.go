package user

import "context"

// Scope is the set of bases an operator may see.
// Global scope sees everything; an empty non-global scope sees nothing.
type Scope struct {
	Global  bool
	BaseIDs []string
}

func GlobalScope() Scope {
	return Scope{Global: true}
}

func (s Scope) Allows(baseID string) bool {
	if s.Global {
		return true
	}
	for _, id := range s.BaseIDs {
		if id == baseID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the scope grants no base at all.
func (s Scope) IsEmpty() bool {
	return !s.Global && len(s.BaseIDs) == 0
}

// Narrow restricts a requested base filter to the scope.
// It returns false when the request falls entirely outside the scope.
func (s Scope) Narrow(requested *string) (Scope, bool) {
	if requested == nil || *requested == "" {
		return s, !s.IsEmpty()
	}
	if !s.Allows(*requested) {
		return Scope{}, false
	}
	return Scope{BaseIDs: []string{*requested}}, true
}

// ScopeResolver computes the base scope of the caller in ctx.
type ScopeResolver interface {
	Resolve(ctx context.Context) (Scope, error)
}
