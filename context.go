// context.go: ordered keyed records (the object model behind path dispatch).
//
// A Context holds parallel key and value slots. Slot 0 is reserved for the
// self-identifier; user-visible keys are 1-based. Keys are unique by
// canonical symbol and carry per-key flags (hidden, protected, no-lookback)
// that the accessors honor: Set refuses protected slots, FindCanon can skip
// hidden ones, and equality ignores hidden keys on either side.
package ren

// KeyFlag is the per-key flag set.
type KeyFlag uint8

const (
	KeyHidden KeyFlag = 1 << iota
	KeyProtected
	KeyNoLookback // lookback dispatch not permitted for this slot
)

// Key pairs an interned symbol with its flags.
type Key struct {
	Sym   *Symbol
	Flags KeyFlag
}

func (k Key) Hidden() bool    { return k.Flags&KeyHidden != 0 }
func (k Key) Protected() bool { return k.Flags&KeyProtected != 0 }

// PortActor lets a port-like context intercept single-step pick/poke calls
// before the generic dispatcher runs (keyed by the pick*/poke actor names).
type PortActor struct {
	Pick func(c *Context, picker Value) (Value, error)
	Poke func(c *Context, picker Value, val Value) (Value, error)
}

// Context is an ordered keyed record.
type Context struct {
	keys  []Key
	vals  []Value
	Actor *PortActor
}

var selfSym = Intern("self")

// NewContext creates an empty context with the self slot installed.
func NewContext(capacity int) *Context {
	c := &Context{
		keys: make([]Key, 1, capacity+1),
		vals: make([]Value, 1, capacity+1),
	}
	c.keys[0] = Key{Sym: selfSym, Flags: KeyHidden}
	c.vals[0] = CtxVal(c)
	return c
}

// Len reports the number of user-visible slots (hidden ones included).
func (c *Context) Len() int { return len(c.keys) - 1 }

// KeyAt returns the key at 1-based index i.
func (c *Context) KeyAt(i int) Key { return c.keys[i] }

// FindCanon locates a key by canonical symbol. Hidden keys are only found
// when includeHidden is set. The self slot is never returned.
func (c *Context) FindCanon(sym *Symbol, includeHidden bool) (int, bool) {
	canon := sym.Canon()
	for i := 1; i < len(c.keys); i++ {
		if c.keys[i].Sym.Canon() != canon {
			continue
		}
		if c.keys[i].Hidden() && !includeHidden {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Get returns the value at 1-based index i.
func (c *Context) Get(i int) Value {
	if i < 1 || i >= len(c.vals) {
		return Void
	}
	return c.vals[i]
}

// Set stores v at 1-based index i, refusing protected slots. The check and
// the write happen within one call, so a failed Set mutates nothing.
func (c *Context) Set(i int, v Value) error {
	if i < 1 || i >= len(c.vals) {
		return &PathError{Kind: ErrBadPathSet, Target: VTContext, Picker: Int(int64(i))}
	}
	if c.keys[i].Protected() {
		return &AccessError{Kind: ErrProtectedKey, Key: c.keys[i].Sym}
	}
	c.vals[i] = v
	return nil
}

// SlotPtr exposes the cell address for the path engine's Reference outcome.
func (c *Context) SlotPtr(i int) *Value {
	if i < 1 || i >= len(c.vals) {
		return nil
	}
	return &c.vals[i]
}

// Hide, Protect and NoLookback flag a slot in place.
func (c *Context) Hide(i int)       { c.keys[i].Flags |= KeyHidden }
func (c *Context) Protect(i int)    { c.keys[i].Flags |= KeyProtected }
func (c *Context) NoLookback(i int) { c.keys[i].Flags |= KeyNoLookback }

// AppendWord adds a key for sym with a Void value if it is not already
// present (hidden keys count as present) and returns its index.
func (c *Context) AppendWord(sym *Symbol) int {
	if i, ok := c.FindCanon(sym, true); ok {
		return i
	}
	c.keys = append(c.keys, Key{Sym: sym})
	c.vals = append(c.vals, Void)
	return len(c.keys) - 1
}

// Append extends the context from a word or block argument.
//
// For a block, the extension is two-pass: the first pass collects every
// set-word not yet present and extends the key list by the missing count,
// the second binds each set-word to the literal value that follows it.
// Collisions with hidden or protected keys fail before any value is bound.
func (c *Context) Append(arg Value) error {
	if IsWordLike(arg.Tag) {
		c.AppendWord(arg.Sym())
		return nil
	}
	if arg.Tag != VTBlock {
		return &PathError{Kind: ErrBadPathSelect, Target: VTContext, Picker: arg}
	}

	elems := arg.Arr().Elems[seriesIndex(arg.Index, arg.Arr().Len()):]

	// Pass 1: check collisions, collect missing keys.
	var missing []*Symbol
	seen := map[*Symbol]bool{}
	for _, e := range elems {
		if e.Tag != VTSetWord {
			continue
		}
		sym := e.Sym()
		if i, ok := c.FindCanon(sym, true); ok {
			if c.keys[i].Hidden() {
				return &AccessError{Kind: ErrHiddenKey, Key: sym}
			}
			if c.keys[i].Protected() {
				return &AccessError{Kind: ErrProtectedKey, Key: sym}
			}
			continue
		}
		if !seen[sym.Canon()] {
			seen[sym.Canon()] = true
			missing = append(missing, sym)
		}
	}
	for _, sym := range missing {
		c.keys = append(c.keys, Key{Sym: sym})
		c.vals = append(c.vals, Void)
	}

	// Pass 2: bind each set-word to the literal value that follows it.
	for i := 0; i < len(elems); i++ {
		if elems[i].Tag != VTSetWord {
			continue
		}
		idx, _ := c.FindCanon(elems[i].Sym(), true)
		val := Void
		if i+1 < len(elems) && elems[i+1].Tag != VTSetWord {
			val = elems[i+1]
		}
		c.vals[idx] = val
	}
	return nil
}

// Trim returns a new context with hidden, blank and void entries removed,
// preserving the order of what remains.
func (c *Context) Trim() *Context {
	out := NewContext(c.Len())
	for i := 1; i < len(c.keys); i++ {
		if c.keys[i].Hidden() {
			continue
		}
		if c.vals[i].Tag == VTVoid || c.vals[i].Tag == VTBlank {
			continue
		}
		out.keys = append(out.keys, Key{Sym: c.keys[i].Sym, Flags: c.keys[i].Flags})
		out.vals = append(out.vals, c.vals[i])
	}
	return out
}

// Equal compares two contexts skipping hidden keys on either side: same
// visible key set (by canonical symbol), pairwise-equal values.
func (c *Context) Equal(o *Context) bool {
	if c == o {
		return true
	}
	if c.visibleCount() != o.visibleCount() {
		return false
	}
	for i := 1; i < len(c.keys); i++ {
		if c.keys[i].Hidden() {
			continue
		}
		j, ok := o.FindCanon(c.keys[i].Sym, false)
		if !ok {
			return false
		}
		cv, ov := c.vals[i], o.vals[j]
		// Self-references would recurse forever; compare them by identity.
		if cv.Tag == VTContext && ov.Tag == VTContext {
			if cv.Ctx() == c && ov.Ctx() == o {
				continue
			}
		}
		if !Equal(cv, ov) {
			return false
		}
	}
	return true
}

func (c *Context) visibleCount() int {
	n := 0
	for i := 1; i < len(c.keys); i++ {
		if !c.keys[i].Hidden() {
			n++
		}
	}
	return n
}

// Copy clones the context; with deep set, array and string payloads in the
// value slots are cloned too. The clone's self slot points at the clone.
func (c *Context) Copy(deep bool) *Context {
	out := NewContext(c.Len())
	for i := 1; i < len(c.keys); i++ {
		out.keys = append(out.keys, c.keys[i])
		v := c.vals[i]
		if v.Tag == VTContext && v.Ctx() == c {
			v = CtxVal(out)
		} else if deep {
			v = CopyDeep(v)
		}
		out.vals = append(out.vals, v)
	}
	out.Actor = c.Actor
	return out
}

// Words returns the visible key symbols in order.
func (c *Context) Words(includeHidden bool) []*Symbol {
	out := make([]*Symbol, 0, c.Len())
	for i := 1; i < len(c.keys); i++ {
		if c.keys[i].Hidden() && !includeHidden {
			continue
		}
		out = append(out, c.keys[i].Sym)
	}
	return out
}

// Construct builds a context from a body block without evaluation: only
// set-word/value pairs are honored, chained set-words share one value, and
// nothing in value position is executed. With only set, no SELF slot is
// exposed (the context still reserves slot 0 but hides it from Words and
// equality as usual; only additionally skips the self binding).
func Construct(body Value, only bool) (*Context, error) {
	if body.Tag != VTBlock {
		return nil, &PathError{Kind: ErrMalConstruct, Target: body.Tag, Picker: body,
			Msg: "construct requires a block body"}
	}
	elems := body.Arr().Elems[seriesIndex(body.Index, body.Arr().Len()):]
	ctx := NewContext(len(elems) / 2)
	if only {
		ctx.vals[0] = Void
	}

	for i := 0; i < len(elems); {
		if elems[i].Tag != VTSetWord {
			// Stray values outside a pair are ignored, as the no-eval
			// construct does; a word in key position is malformed.
			if IsWordLike(elems[i].Tag) && elems[i].Tag != VTWord {
				return nil, &PathError{Kind: ErrMalConstruct, Target: elems[i].Tag,
					Picker: elems[i], Msg: "construct body expects set-word pairs"}
			}
			i++
			continue
		}
		// Collect a chain of set-words sharing one value.
		start := i
		for i < len(elems) && elems[i].Tag == VTSetWord {
			i++
		}
		val := Void
		if i < len(elems) {
			val = elems[i]
			i++
		}
		for j := start; j < len(elems) && elems[j].Tag == VTSetWord; j++ {
			idx := ctx.AppendWord(elems[j].Sym())
			ctx.vals[idx] = val
		}
	}
	return ctx, nil
}
