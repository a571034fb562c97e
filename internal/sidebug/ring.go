package sidebug

import cring "container/ring"

// Ring is a fixed-size, oldest-evicted buffer of trace lines. Adapted
// from pkg/minilog's container/ring-backed Ring, trimmed to just the
// push/dump operations sidebug needs (no timestamp prefix — trace lines
// already carry their own tag).
type Ring struct {
	size int
	r    *cring.Ring
}

func newRing(size int) *Ring {
	return &Ring{r: cring.New(size), size: size}
}

func (l *Ring) push(line string) {
	l.r = l.r.Next()
	l.r.Value = line
}

func (l *Ring) dump() []string {
	res := make([]string, 0, l.size)
	l.r.Next().Do(func(v interface{}) {
		if v == nil {
			return
		}
		res = append(res, v.(string))
	})
	return res
}
