// pickpoke.go: single-step selection.
//
// Pick and Poke run one dispatch of the path machinery without a path
// value, for hosts that select interactively. A context carrying a port
// actor intercepts both and bounces to the user handler.
package ren

// Pick selects one element of location by picker. Absent elements come
// back as void; unsupported selectors raise the select error.
func Pick(location, picker Value) (Value, error) {
	if IsVoid(picker) {
		return Void, &PathError{Kind: ErrNoValue, Target: location.Tag, Picker: picker, Msg: "picker has no value"}
	}
	if location.Tag == VTContext {
		if a := location.Ctx().Actor; a != nil && a.Pick != nil {
			return a.Pick(location.Ctx(), picker)
		}
	}
	d := pathDispatch[location.Tag]
	if d == nil {
		return Void, &PathError{Kind: ErrBadPathSelect, Target: location.Tag, Picker: picker}
	}
	w := &Walker{out: location}
	outcome, err := d(w, picker, nil)
	if err != nil {
		return Void, err
	}
	switch outcome {
	case OutOK:
		return w.out, nil
	case OutUseStore:
		return w.store, nil
	case OutNone:
		return Void, nil
	case OutReference:
		return *w.ref, nil
	}
	return Void, &PathError{Kind: ErrBadPathSelect, Target: location.Tag, Picker: picker}
}

// Poke writes value at picker inside location and returns the value. For
// packed types whose cell cannot be reached by reference (pair, tuple,
// date, time) the returned value is the rebuilt location cell; the caller
// owns storing it back.
func Poke(location, picker, value Value) (Value, error) {
	if IsVoid(picker) {
		return Void, &PathError{Kind: ErrNoValue, Target: location.Tag, Picker: picker, Msg: "picker has no value"}
	}
	if location.Tag == VTContext {
		if a := location.Ctx().Actor; a != nil && a.Poke != nil {
			return a.Poke(location.Ctx(), picker, value)
		}
	}
	d := pathDispatch[location.Tag]
	if d == nil {
		return Void, &PathError{Kind: ErrBadPathPoke, Target: location.Tag, Picker: picker}
	}
	w := &Walker{out: location}
	outcome, err := d(w, picker, &value)
	if err != nil {
		return Void, err
	}
	switch outcome {
	case OutInvisible:
		return value, nil
	case OutReference:
		*w.ref = value
		return value, nil
	case OutImmediate:
		return w.out, nil
	}
	return Void, &PathError{Kind: ErrBadPathPoke, Target: location.Tag, Picker: picker}
}
