package opengl

// table stores backend objects behind 1-based handles. Freed slots are
// reused so handles stay small.
type table[T any] struct {
	items []T
	live  []bool
	free  []uint32
}

func (t *table[T]) add(v T) uint32 {
	if n := len(t.free); n > 0 {
		h := t.free[n-1]
		t.free = t.free[:n-1]
		t.items[h-1] = v
		t.live[h-1] = true
		return h
	}
	t.items = append(t.items, v)
	t.live = append(t.live, true)
	return uint32(len(t.items))
}

func (t *table[T]) get(h uint32) (T, bool) {
	if h == 0 || int(h) > len(t.items) || !t.live[h-1] {
		var zero T
		return zero, false
	}
	return t.items[h-1], true
}

func (t *table[T]) remove(h uint32) (T, bool) {
	v, ok := t.get(h)
	if !ok {
		return v, false
	}
	var zero T
	t.items[h-1] = zero
	t.live[h-1] = false
	t.free = append(t.free, h)
	return v, true
}

// each calls fn for every live entry.
func (t *table[T]) each(fn func(h uint32, v T)) {
	for i, ok := range t.live {
		if ok {
			fn(uint32(i+1), t.items[i])
		}
	}
}
