package goldfish

import "io"

// AddReadChecks wraps d so that every nested container it produces
// enforces a parent/child locking discipline: while a String, Binary,
// Array or Map child is alive, its parent container can't be read from
// again until the child is fully drained (by reading it to exhaustion
// or by SeekToEnd); a Map additionally enforces that NextKey and Value
// strictly alternate.
//
// Not calling AddReadChecks at all is the zero-overhead, no-check
// policy: a raw reader's output can be consumed directly, and caller
// misuse is undefined behavior rather than a reported error.
func AddReadChecks(d *Document) (*Document, error) {
	return addReadChecks(d, nil)
}

// lockGuard is the per-container state a debug-checked container
// carries: whether IT is currently locked by one of its own
// not-yet-drained children, and a pointer to the parent lockGuard it
// will unlock once it is itself exhausted.
type lockGuard struct {
	parent *lockGuard
	locked bool
}

func newLockGuard(parent *lockGuard) *lockGuard {
	if parent != nil {
		parent.locked = true
	}
	return &lockGuard{parent: parent}
}

func (g *lockGuard) checkUnlocked() error {
	if g == nil {
		return nil
	}
	if g.locked {
		log.Warn("goldfish: read from a container while an undrained child is still live")
		return badVariantAccess("parent container is locked by an undrained child reader")
	}
	return nil
}

func (g *lockGuard) unlockParent() {
	if g != nil && g.parent != nil {
		g.parent.locked = false
	}
}

// addReadChecks wraps a freshly produced, not-yet-consumed Document so
// that reading into it locks parent, and exhausting or abandoning it
// unlocks parent again. Scalars pass through unchanged, since they carry
// no nested reader that could outlive this call.
func addReadChecks(d *Document, parent *lockGuard) (*Document, error) {
	switch d.Tag() {
	case TagString:
		r, err := d.AsString()
		if err != nil {
			return nil, err
		}
		lock := newLockGuard(parent)
		return newStringDoc(&checkedByteReader{inner: r, lock: lock}, d.jsonMode), nil

	case TagBinary:
		r, err := d.AsBinary()
		if err != nil {
			return nil, err
		}
		lock := newLockGuard(parent)
		// Binary's reader is already fully decoded (base64 tunnel, if
		// any, was resolved by AsBinary): the wrapped Document is no
		// longer json-mode-sensitive.
		return newBinaryDoc(&checkedByteReader{inner: r, lock: lock}, false), nil

	case TagArray:
		ar, err := d.AsArray()
		if err != nil {
			return nil, err
		}
		lock := newLockGuard(parent)
		return newArrayDoc(&checkedArrayReader{inner: ar, lock: lock}, d.jsonMode), nil

	case TagMap:
		mr, err := d.AsMap()
		if err != nil {
			return nil, err
		}
		lock := newLockGuard(parent)
		return newMapDoc(&checkedMapReader{inner: mr, lock: lock}, d.jsonMode), nil

	default:
		return d, nil
	}
}

type checkedByteReader struct {
	inner ByteReader
	lock  *lockGuard
}

func (r *checkedByteReader) Read(dst []byte) (int, error) {
	n, err := r.inner.Read(dst)
	if n == 0 {
		r.lock.unlockParent()
	}
	return n, err
}

func (r *checkedByteReader) Seek(n uint64) (uint64, error) {
	skipped, err := r.inner.Seek(n)
	if skipped < n {
		r.lock.unlockParent()
	}
	return skipped, err
}

var _ io.Reader = (*checkedByteReader)(nil)

type checkedArrayReader struct {
	inner ArrayReader
	lock  *lockGuard
}

func (a *checkedArrayReader) Next() (*Document, bool, error) {
	if err := a.lock.checkUnlocked(); err != nil {
		return nil, false, err
	}
	d, ok, err := a.inner.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		a.lock.unlockParent()
		return nil, false, nil
	}
	checked, err := addReadChecks(d, a.lock)
	if err != nil {
		return nil, false, err
	}
	return checked, true, nil
}

type checkedMapReader struct {
	inner         MapReader
	lock          *lockGuard
	awaitingValue bool
}

func (m *checkedMapReader) NextKey() (*Document, bool, error) {
	if err := m.lock.checkUnlocked(); err != nil {
		return nil, false, err
	}
	if m.awaitingValue {
		log.Warn("goldfish: map NextKey called before Value was read for the previous key")
		return nil, false, badVariantAccess("map: Value must be read before the next NextKey")
	}
	key, ok, err := m.inner.NextKey()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		m.lock.unlockParent()
		return nil, false, nil
	}
	m.awaitingValue = true
	checked, err := addReadChecks(key, m.lock)
	if err != nil {
		return nil, false, err
	}
	return checked, true, nil
}

func (m *checkedMapReader) Value() (*Document, error) {
	if err := m.lock.checkUnlocked(); err != nil {
		return nil, err
	}
	if !m.awaitingValue {
		log.Warn("goldfish: map Value called before NextKey")
		return nil, badVariantAccess("map: NextKey must be read before Value")
	}
	m.awaitingValue = false
	val, err := m.inner.Value()
	if err != nil {
		return nil, err
	}
	return addReadChecks(val, m.lock)
}

// CheckedArrayBuilder wraps an ArrayBuilder so that appending after Build
// returns an error instead of silently corrupting the assembled array.
// Obtained from AddArrayWriteChecks.
type CheckedArrayBuilder struct {
	inner *ArrayBuilder
	built bool
}

// AddArrayWriteChecks wraps b with the append-after-build check described
// on CheckedArrayBuilder. Not calling it is the zero-overhead, no-check
// policy symmetric with AddReadChecks: the raw ArrayBuilder trusts the
// caller and misuse is undefined behavior.
func AddArrayWriteChecks(b *ArrayBuilder) *CheckedArrayBuilder {
	return &CheckedArrayBuilder{inner: b}
}

// Append adds d as the array's next element, failing if Build was
// already called.
func (b *CheckedArrayBuilder) Append(d *Document) error {
	if b.built {
		log.Warn("goldfish: Append called on an ArrayBuilder after Build")
		return badVariantAccess("array builder: Append called after Build")
	}
	b.inner.Append(d)
	return nil
}

// Build finalizes the array and returns it as a Document. Any further
// Append call fails.
func (b *CheckedArrayBuilder) Build() *Document {
	b.built = true
	return b.inner.Build()
}

// CheckedMapBuilder wraps a MapBuilder so that AppendKey/AppendValue
// called out of order, or appending after Build, returns an error
// instead of silently producing a malformed map. Obtained from
// AddMapWriteChecks.
type CheckedMapBuilder struct {
	inner         *MapBuilder
	built         bool
	awaitingValue bool
}

// AddMapWriteChecks wraps b with the alternation and append-after-build
// checks described on CheckedMapBuilder. Not calling it is the
// zero-overhead, no-check policy symmetric with AddReadChecks.
func AddMapWriteChecks(b *MapBuilder) *CheckedMapBuilder {
	return &CheckedMapBuilder{inner: b}
}

// AppendKey adds key as the next pair's key, failing if the previous
// pair's AppendValue hasn't been called yet, or if Build was already
// called.
func (b *CheckedMapBuilder) AppendKey(key *Document) error {
	if b.built {
		log.Warn("goldfish: AppendKey called on a MapBuilder after Build")
		return badVariantAccess("map builder: AppendKey called after Build")
	}
	if b.awaitingValue {
		log.Warn("goldfish: map AppendKey called before AppendValue for the previous key")
		return badVariantAccess("map builder: AppendValue must be called before the next AppendKey")
	}
	b.awaitingValue = true
	b.inner.AppendKey(key)
	return nil
}

// AppendValue adds value as the value for the most recently appended
// key, failing if AppendKey wasn't called first, or if Build was
// already called.
func (b *CheckedMapBuilder) AppendValue(value *Document) error {
	if b.built {
		log.Warn("goldfish: AppendValue called on a MapBuilder after Build")
		return badVariantAccess("map builder: AppendValue called after Build")
	}
	if !b.awaitingValue {
		log.Warn("goldfish: map AppendValue called before AppendKey")
		return badVariantAccess("map builder: AppendKey must be called before AppendValue")
	}
	b.awaitingValue = false
	b.inner.AppendValue(value)
	return nil
}

// Build finalizes the map and returns it as a Document. Any further
// AppendKey/AppendValue call fails.
func (b *CheckedMapBuilder) Build() *Document {
	b.built = true
	return b.inner.Build()
}
