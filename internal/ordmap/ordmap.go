// Package ordmap provides a small insertion-order-preserving map. The
// aggregation rollups depend on first-seen iteration order, which must
// hold across repeated computations rather than fall out of Go map
// iteration by accident.
package ordmap

// Map preserves the order in which keys were first inserted. The zero
// value is not usable; call New.
type Map[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{vals: make(map[K]V)}
}

// Get returns the value for k and whether it is present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.vals[k]
	return v, ok
}

// Upsert looks up k, creating it via mk on first sight, applies fn to
// the value and stores the result back. mk may be nil when V's zero
// value is a valid start.
func (m *Map[K, V]) Upsert(k K, mk func() V, fn func(V) V) {
	v, ok := m.vals[k]
	if !ok {
		m.keys = append(m.keys, k)
		if mk != nil {
			v = mk()
		}
	}
	m.vals[k] = fn(v)
}

// Set stores v under k, appending k to the order on first sight.
func (m *Map[K, V]) Set(k K, v V) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

func (m *Map[K, V]) Len() int { return len(m.keys) }

// Keys returns the keys in first-insertion order. The returned slice is
// shared; callers must not mutate it.
func (m *Map[K, V]) Keys() []K { return m.keys }

// Values returns the values in first-insertion order of their keys.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}
