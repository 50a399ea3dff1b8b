package migration

import (
	"fmt"
	"regexp"
	"sort"
)

// Unit is one named, reversible schema change: an ordered list of forward
// statements and an ordered list of reverse statements. Units are registered
// in a manifest at startup and are read-only afterwards.
type Unit struct {
	// Version orders units totally; duplicates are a configuration error.
	Version uint

	// Name is a short snake_case description.
	Name string

	// Up statements, executed in order inside one transaction.
	Up []string

	// Down statements, executed in order inside one transaction.
	Down []string
}

// Key returns the stable identifier recorded in the tracking table, e.g.
// "0001_init".
func (u Unit) Key() string {
	return fmt.Sprintf("%04d_%s", u.Version, u.Name)
}

var unitNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry is the migration manifest: the explicit table mapping version to
// forward/reverse operations, built at startup.
type Registry struct {
	units     []Unit
	byVersion map[uint]int
}

// NewRegistry creates an empty manifest.
func NewRegistry() *Registry {
	return &Registry{byVersion: make(map[uint]int)}
}

// Register adds a unit to the manifest. Malformed units and version
// collisions are startup configuration errors.
func (r *Registry) Register(u Unit) error {
	if u.Version == 0 {
		return fmt.Errorf("migration version must be positive")
	}
	if !unitNameRe.MatchString(u.Name) {
		return fmt.Errorf("invalid migration name %q: must be snake_case", u.Name)
	}
	if len(u.Up) == 0 {
		return fmt.Errorf("migration %s has no forward statements", u.Key())
	}
	if len(u.Down) == 0 {
		return fmt.Errorf("migration %s has no reverse statements", u.Key())
	}
	if i, ok := r.byVersion[u.Version]; ok {
		return fmt.Errorf("migration version %d registered twice (%s, %s)",
			u.Version, r.units[i].Key(), u.Key())
	}

	r.byVersion[u.Version] = len(r.units)
	r.units = append(r.units, u)
	return nil
}

// MustRegister is Register for static manifests; it panics on configuration
// errors, which abort process startup.
func (r *Registry) MustRegister(u Unit) {
	if err := r.Register(u); err != nil {
		panic(err)
	}
}

// Units returns all registered units in ascending version order.
func (r *Registry) Units() []Unit {
	out := make([]Unit, len(r.units))
	copy(out, r.units)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// ByKey looks a unit up by its tracking key.
func (r *Registry) ByKey(key string) (Unit, bool) {
	for _, u := range r.units {
		if u.Key() == key {
			return u, true
		}
	}
	return Unit{}, false
}

// Len returns the number of registered units.
func (r *Registry) Len() int { return len(r.units) }
