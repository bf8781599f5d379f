package cdl

import (
	"fmt"
	"slices"
)

// Coverage is the number of approaches of a zone against the number of
// signals registered for it.
type Coverage struct {
	Approaches int `json:"approaches"`
	Signals    int `json:"signals"`
}

// Full reports whether every approach has a signal.
func (c Coverage) Full() bool { return c.Signals == c.Approaches }

// Ratio returns Signals/Approaches, or 0 for a zone without approaches.
func (c Coverage) Ratio() float64 {
	if c.Approaches == 0 {
		return 0
	}
	return float64(c.Signals) / float64(c.Approaches)
}

// Percent returns the coverage ratio as a percentage.
func (c Coverage) Percent() float64 { return c.Ratio() * 100 }

// Registry accumulates signals across placement runs and answers coverage
// queries. It is the only owner of signal lifetime: signals stay registered
// until [Registry.Clear], even if the network they came from changes.
//
// The zero value is not usable; create instances with [NewRegistry].
// Registry is not safe for concurrent use.
type Registry struct {
	signals    []Signal
	byID       map[string]int
	approaches map[string][]string
	zoneOrder  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[string]int),
		approaches: make(map[string][]string),
	}
}

// AddZones records the approaches of each zone for coverage queries.
// Approaches already known for a zone are not added twice.
func (r *Registry) AddZones(zones Zones) {
	for _, z := range zones {
		known, seen := r.approaches[z.ID]
		if !seen {
			r.zoneOrder = append(r.zoneOrder, z.ID)
		}
		for _, a := range z.Approaches {
			if !slices.Contains(known, a) {
				known = append(known, a)
			}
		}
		r.approaches[z.ID] = known
	}
}

// Add registers signals as one batch. If any ID collides with a registered
// signal or with another signal in the batch, Add returns ErrDuplicateSignal
// and registers nothing.
func (r *Registry) Add(signals ...Signal) error {
	batch := make(map[string]bool, len(signals))
	for _, s := range signals {
		if _, exists := r.byID[s.ID]; exists || batch[s.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateSignal, s.ID)
		}
		batch[s.ID] = true
	}
	for _, s := range signals {
		r.byID[s.ID] = len(r.signals)
		r.signals = append(r.signals, s)
	}
	return nil
}

// Get returns the signal with the given ID.
func (r *Registry) Get(id string) (Signal, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Signal{}, false
	}
	return r.signals[i], true
}

// All returns every registered signal in registration order.
func (r *Registry) All() []Signal { return slices.Clone(r.signals) }

// Len returns the number of registered signals.
func (r *Registry) Len() int { return len(r.signals) }

// ForZone returns the signals protecting the given zone, in registration
// order.
func (r *Registry) ForZone(zoneID string) []Signal {
	var out []Signal
	for _, s := range r.signals {
		if s.ProtectsZone == zoneID {
			out = append(out, s)
		}
	}
	return out
}

// ZoneIDs returns the zones known to the registry in the order they were
// first added.
func (r *Registry) ZoneIDs() []string { return slices.Clone(r.zoneOrder) }

// Coverage returns the approach and signal counts for a zone. Zones never
// passed to [Registry.AddZones] report zero approaches.
func (r *Registry) Coverage(zoneID string) Coverage {
	return Coverage{
		Approaches: len(r.approaches[zoneID]),
		Signals:    len(r.ForZone(zoneID)),
	}
}

// Clear removes all signals and zones so placement can be re-run.
func (r *Registry) Clear() {
	r.signals = nil
	r.byID = make(map[string]int)
	r.approaches = make(map[string][]string)
	r.zoneOrder = nil
}
