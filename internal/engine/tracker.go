package engine

// KeyTracker tells keys apart from string values for drivers whose decoders
// report both as plain strings.
type KeyTracker struct {
	stack []trackFrame
}

type trackFrame struct {
	object       bool
	expectingKey bool
}

// Open records the start of an object or array.
func (t *KeyTracker) Open(object bool) {
	t.stack = append(t.stack, trackFrame{object: object, expectingKey: object})
}

// Close records the end of the innermost container, which completes a value
// of its parent.
func (t *KeyTracker) Close() {
	if n := len(t.stack); n > 0 {
		t.stack = t.stack[:n-1]
	}
	t.Value()
}

// Key reports whether a string token at the current position is an object
// key, and advances the state accordingly.
func (t *KeyTracker) Key() bool {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	t.Value()
	return false
}

// Value records a completed scalar value.
func (t *KeyTracker) Value() {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// TokenStart returns the index of the first significant byte at or after
// from, skipping whitespace and the ',' and ':' separators.
func TokenStart(data []byte, from int64) int64 {
	i := from
	if i < 0 {
		i = 0
	}
	for ; i < int64(len(data)); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r', ',', ':':
			continue
		}
		return i
	}
	return int64(len(data))
}
