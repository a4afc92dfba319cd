package rules

import "sync"

// Resolver merges the rule lists of named contributors in registration order
// and caches the result until a contributor changes.
type Resolver struct {
	mu       sync.Mutex
	order    []string
	values   map[string][]PrefixRule
	resolved *Set
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{values: make(map[string][]PrefixRule)}
}

// Contribute sets the rules for a contributor. A contributor keeps the
// position of its first contribution; contributing again replaces its value.
func (r *Resolver) Contribute(name string, list []PrefixRule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.values[name]; !ok {
		r.order = append(r.order, name)
	}
	cp := make([]PrefixRule, len(list))
	copy(cp, list)
	r.values[name] = cp
	r.resolved = nil
}

// Withdraw removes a contributor entirely.
func (r *Resolver) Withdraw(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.resolved = nil
}

// Contributors returns contributor names in merge order.
func (r *Resolver) Contributors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns the merged rule set. The same pointer is returned until a
// contributor changes.
func (r *Resolver) Resolve() *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return r.resolved
	}
	lists := make([][]PrefixRule, 0, len(r.order))
	for _, name := range r.order {
		lists = append(lists, r.values[name])
	}
	r.resolved = Merge(lists...)
	return r.resolved
}
