package codec

import "sync"

// defaultInternEntries bounds the size of an intern table.
const defaultInternEntries = 4096

// interner shares the memory of short strings that are decoded repeatedly.
// It is safe for concurrent use. Once full, new strings are no longer kept.
type interner struct {
	sync.RWMutex

	table      map[string]string
	maxLen     int
	maxEntries int
}

func newInterner(maxLen, maxEntries int) *interner {
	return &interner{
		table:      make(map[string]string),
		maxLen:     maxLen,
		maxEntries: maxEntries,
	}
}

func (i *interner) intern(data []byte) string {
	if len(data) > i.maxLen {
		return string(data)
	}

	i.RLock()
	s, found := i.table[string(data)]
	i.RUnlock()

	if found {
		return s
	}

	s = string(data)

	i.Lock()
	defer i.Unlock()

	prev, found := i.table[s]
	if found {
		return prev
	}

	if len(i.table) < i.maxEntries {
		i.table[s] = s
	}

	return s
}

func (i *interner) len() int {
	i.RLock()
	defer i.RUnlock()

	return len(i.table)
}
