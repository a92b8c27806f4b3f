package resolve

import (
	"sort"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
	"github.com/systmms/cloudconduit/internal/profile"
)

// Resolved is the aggregate resolution result for one profile:
// a mapping from canonical key to SourceValue, immutable once returned.
type Resolved struct {
	profile profile.ServiceProfile
	values  map[string]SourceValue
}

// Profile returns the profile this result was resolved for.
func (r *Resolved) Profile() profile.ServiceProfile {
	return r.profile
}

// Get returns the SourceValue for a canonical key. Unregistered keys
// report absence.
func (r *Resolved) Get(key string) SourceValue {
	if v, ok := r.values[key]; ok {
		return v
	}
	return absent()
}

// Value returns the value for a canonical key and whether any source
// supplied it.
func (r *Resolved) Value(key string) (string, bool) {
	v := r.Get(key)
	return v.Value, v.Present()
}

// Keys returns the canonical keys in stable order.
func (r *Resolved) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the present key/value pairs.
func (r *Resolved) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		if v.Present() {
			out[k] = v.Value
		}
	}
	return out
}

// Require implements the caller-side required-field check. It reports
// every named key that resolved to absence in a single error.
func (r *Resolved) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !r.Get(k).Present() {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return ccerrors.MissingFieldsError{
		Profile: string(r.profile),
		Fields:  missing,
	}
}
