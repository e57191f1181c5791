package types

// indexMap is a map that remembers insertion order. Replacing a key keeps its
// original position.
type indexMap[K comparable, V any] struct {
	keys   []K
	values []V
	index  map[K]int
}

func (m *indexMap[K, V]) insert(key K, value V) {
	if i, ok := m.index[key]; ok {
		m.values[i] = value
		return
	}
	if m.index == nil {
		m.index = make(map[K]int)
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

func (m *indexMap[K, V]) get(key K) (V, bool) {
	if i, ok := m.index[key]; ok {
		return m.values[i], true
	}
	var zero V
	return zero, false
}

func (m *indexMap[K, V]) contains(key K) bool {
	_, ok := m.index[key]
	return ok
}

func (m *indexMap[K, V]) at(i int) (K, V, bool) {
	if i < 0 || i >= len(m.keys) {
		var (
			k K
			v V
		)
		return k, v, false
	}
	return m.keys[i], m.values[i], true
}

func (m *indexMap[K, V]) len() int { return len(m.keys) }

func (m *indexMap[K, V]) valueList() []V {
	out := make([]V, len(m.values))
	copy(out, m.values)
	return out
}

func (m *indexMap[K, V]) keyList() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *indexMap[K, V]) clone() indexMap[K, V] {
	out := indexMap[K, V]{
		keys:   m.keyList(),
		values: m.valueList(),
	}
	if m.index != nil {
		out.index = make(map[K]int, len(m.index))
		for k, v := range m.index {
			out.index[k] = v
		}
	}
	return out
}
