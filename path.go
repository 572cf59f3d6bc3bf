// path.go: the path walker.
//
// DoPath walks a path value: the head seeds the walk from the lexical
// context (or a group evaluation, or a literal), then each element is
// evaluated to a picker and handed to the per-type dispatcher of the
// current value. A trailing set value turns the terminal step into a
// write. When the walk lands on a function with elements left over, the
// remainder is collected as refinements for the caller's evaluator.
package ren

// Outcome is a dispatcher's verdict for one path step.
type Outcome int

const (
	// OutUnhandled: the type does not support this selector.
	OutUnhandled Outcome = iota
	// OutOK: the walker's current value was replaced in place.
	OutOK
	// OutUseStore: the next value sits in the walker's store cell.
	OutUseStore
	// OutNone: the next value is a blank.
	OutNone
	// OutInvisible: the dispatcher performed the write itself.
	OutInvisible
	// OutReference: the walker's ref cell points at the next value; a
	// terminal set writes through it.
	OutReference
	// OutImmediate: the write produced a new packed value in the walker's
	// current cell; the engine copies it back to the deferred slot.
	OutImmediate
)

// Evaluator evaluates a group encountered during a walk. Group results
// feed pickers; a throw from the group bubbles out as a ThrowSignal.
type Evaluator interface {
	EvalGroup(group Value, specifier *Context) (Value, error)
}

// Dispatcher advances one step for a single type.
type Dispatcher func(w *Walker, picker Value, setval *Value) (Outcome, error)

// pathDispatch maps each tag to its dispatcher; nil means unhandled.
var pathDispatch [numTags]Dispatcher

// Walker carries the state of one walk. No two walks share a walker; the
// store cell is the scratch shared between engine and dispatchers.
type Walker struct {
	out       Value  // current value
	store     Value  // scratch for OutUseStore
	ref       *Value // target for OutReference
	deferred  *Value // original location feeding the current value
	specifier *Context
	ev        Evaluator
}

// PathResult is what a completed walk produced.
type PathResult struct {
	Value   Value
	Label   *Symbol   // first function-naming word seen, if any
	Refines []*Symbol // refinements trailing a function value
}

// DoPath walks path over specifier. A non-nil setval makes the terminal
// step a write, in which case the returned value is the set value itself.
func DoPath(path Value, specifier *Context, setval *Value, ev Evaluator) (PathResult, error) {
	if !IsPathLike(path.Tag) {
		return PathResult{}, &PathError{Kind: ErrBadPathSelect, Target: path.Tag, Msg: "not a path"}
	}
	elems := path.Arr().Elems[path.Index:]
	if len(elems) == 0 {
		return PathResult{}, &PathError{Kind: ErrBadPathSelect, Target: path.Tag, Msg: "empty path"}
	}

	w := &Walker{specifier: specifier, ev: ev}
	res := PathResult{}

	if err := w.seed(elems[0], &res); err != nil {
		return PathResult{}, err
	}

	for i := 1; i < len(elems); i++ {
		if w.out.Tag == VTFunction {
			if setval != nil {
				return PathResult{}, &PathError{Kind: ErrBadPathSet, Target: VTFunction, Msg: "cannot set through a function"}
			}
			refs, err := collectRefinements(elems[i:], specifier, ev)
			if err != nil {
				return PathResult{}, err
			}
			res.Refines = refs
			res.Value = w.out
			return res, nil
		}

		picker, err := w.evalPicker(elems[i])
		if err != nil {
			return PathResult{}, err
		}
		if IsVoid(picker) {
			return PathResult{}, &PathError{Kind: ErrNoValue, Target: w.out.Tag, Picker: elems[i], Msg: "picker has no value"}
		}

		var sv *Value
		if setval != nil && i == len(elems)-1 {
			sv = setval
		}
		if err := w.step(picker, sv); err != nil {
			return PathResult{}, err
		}
		if w.out.Tag == VTFunction && res.Label == nil && IsWordLike(picker.Tag) {
			res.Label = picker.Sym()
		}
	}

	if setval != nil {
		res.Value = *setval
	} else {
		res.Value = w.out
	}
	return res, nil
}

// seed establishes the walk's starting value from the head element.
func (w *Walker) seed(head Value, res *PathResult) error {
	switch head.Tag {
	case VTWord, VTGetWord, VTRefinement:
		slot, err := resolveWord(head.Sym(), w.specifier)
		if err != nil {
			return err
		}
		w.out = *slot
		w.deferred = slot
		if w.out.Tag == VTFunction {
			res.Label = head.Sym()
		}
	case VTGroup:
		v, err := w.evalGroup(head)
		if err != nil {
			return err
		}
		w.out = v
		w.deferred = nil
	default:
		w.out = head
		w.deferred = nil
	}
	return nil
}

// step evaluates one dispatch and folds the outcome into the walker.
func (w *Walker) step(picker Value, sv *Value) error {
	d := pathDispatch[w.out.Tag]
	if d == nil {
		return unhandledErr(w.out.Tag, picker, sv)
	}
	outcome, err := d(w, picker, sv)
	if err != nil {
		return err
	}
	switch outcome {
	case OutOK:
		w.deferred = nil
	case OutUseStore:
		w.out = w.store
		w.deferred = nil
	case OutNone:
		w.out = Blank
		w.deferred = nil
	case OutInvisible:
		if sv != nil {
			w.out = *sv
		}
		w.deferred = nil
	case OutReference:
		if sv != nil {
			*w.ref = *sv
			w.out = *sv
		} else {
			w.deferred = w.ref
			w.out = *w.ref
		}
	case OutImmediate:
		if w.deferred == nil {
			return &PathError{Kind: ErrBadPathSet, Target: w.out.Tag, Picker: picker, Msg: "immediate value has no assignable origin"}
		}
		*w.deferred = w.out
	case OutUnhandled:
		return unhandledErr(w.out.Tag, picker, sv)
	}
	return nil
}

func unhandledErr(target ValueTag, picker Value, sv *Value) error {
	kind := ErrBadPathSelect
	if sv != nil {
		kind = ErrBadPathPoke
	}
	return &PathError{Kind: kind, Target: target, Picker: picker}
}

// evalPicker computes the selector for one element: get-words look up,
// groups evaluate, everything else passes verbatim.
func (w *Walker) evalPicker(elem Value) (Value, error) {
	switch elem.Tag {
	case VTGetWord:
		slot, err := resolveWord(elem.Sym(), w.specifier)
		if err != nil {
			return Void, err
		}
		return *slot, nil
	case VTGroup:
		return w.evalGroup(elem)
	}
	return elem, nil
}

func (w *Walker) evalGroup(group Value) (Value, error) {
	if w.ev == nil {
		return Void, &PathError{Kind: ErrBadPathSelect, Target: VTGroup, Msg: "no evaluator for group"}
	}
	return w.ev.EvalGroup(group, w.specifier)
}

// resolveWord finds a word's slot in the specifier context.
func resolveWord(sym *Symbol, specifier *Context) (*Value, error) {
	if specifier == nil {
		return nil, &PathError{Kind: ErrNoValue, Target: VTWord, Picker: WordTagged(VTWord, sym), Msg: "no context"}
	}
	i, ok := specifier.FindCanon(sym, false)
	if !ok {
		return nil, &PathError{Kind: ErrNoValue, Target: VTWord, Picker: WordTagged(VTWord, sym), Msg: "word has no value"}
	}
	return specifier.SlotPtr(i), nil
}

// collectRefinements gathers the trailing path elements after a function.
// Words push in forward order onto a side stack that is reversed exactly
// once at the end. Blank and void elements are skipped; a get-word looks
// up and is skipped when void or false.
func collectRefinements(elems []Value, specifier *Context, ev Evaluator) ([]*Symbol, error) {
	var side []*Symbol
	for _, e := range elems {
		switch e.Tag {
		case VTWord, VTRefinement, VTIssue:
			side = append(side, e.Sym())
		case VTGetWord:
			slot, err := resolveWord(e.Sym(), specifier)
			if err != nil {
				return nil, err
			}
			v := *slot
			if IsVoid(v) || v.Tag == VTBlank {
				continue
			}
			if v.Tag == VTLogic && !v.Logic() {
				continue
			}
			side = append(side, e.Sym())
		case VTBlank, VTVoid:
			continue
		default:
			return nil, &PathError{Kind: ErrBadRefine, Target: VTFunction, Picker: e}
		}
	}
	for i, j := 0, len(side)-1; i < j; i, j = i+1, j-1 {
		side[i], side[j] = side[j], side[i]
	}
	return side, nil
}
