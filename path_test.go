// path_test.go
package ren

import (
	"reflect"
	"testing"
)

// sumEval is the test evaluator: it folds groups of the shape (a + b) and
// echoes single-value groups, which is all the walk tests need.
type sumEval struct{}

func (sumEval) EvalGroup(group Value, specifier *Context) (Value, error) {
	elems := group.Arr().Elems
	if len(elems) == 3 && elems[1].Tag == VTWord && elems[1].Sym().Equal(Intern("+")) {
		return Int(elems[0].Int() + elems[2].Int()), nil
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return Void, nil
}

// throwEval raises a throw from every group.
type throwEval struct{}

func (throwEval) EvalGroup(group Value, specifier *Context) (Value, error) {
	return Void, &ThrowSignal{Val: Int(42)}
}

func pathOf(t *testing.T, src string) Value {
	t.Helper()
	v := scanOne(t, src)
	if !IsPathLike(v.Tag) {
		t.Fatalf("%q did not scan to a path: %v", src, v.Tag)
	}
	return v
}

// specWith builds a specifier context binding the given names.
func specWith(t *testing.T, pairs map[string]Value) *Context {
	t.Helper()
	c := NewContext(len(pairs))
	for name, v := range pairs {
		i := c.AppendWord(Intern(name))
		if err := c.Set(i, v); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func doPath(t *testing.T, src string, spec *Context) Value {
	t.Helper()
	res, err := DoPath(pathOf(t, src), spec, nil, sumEval{})
	if err != nil {
		t.Fatalf("DoPath(%q): %v", src, err)
	}
	return res.Value
}

func doSetPath(t *testing.T, src string, spec *Context, v Value) {
	t.Helper()
	if _, err := DoPath(pathOf(t, src), spec, &v, sumEval{}); err != nil {
		t.Fatalf("set DoPath(%q): %v", src, err)
	}
}

// Context round trip: read key, write key, read back.
func Test_Path_Context_ReadWrite(t *testing.T) {
	obj := ctxFrom(t, "x: 10 y: 20")
	spec := specWith(t, map[string]Value{"obj": CtxVal(obj)})

	if got := doPath(t, "obj/x", spec); got.Int() != 10 {
		t.Fatalf("read: %v", got)
	}
	doSetPath(t, "obj/x", spec, Int(99))
	if got := doPath(t, "obj/x", spec); got.Int() != 99 {
		t.Fatalf("after write: %v", got)
	}
	i, _ := obj.FindCanon(Intern("x"), false)
	if obj.Get(i).Int() != 99 {
		t.Fatal("write did not reach the context slot")
	}
}

func Test_Path_Context_Protected(t *testing.T) {
	obj := ctxFrom(t, "x: 1")
	i, _ := obj.FindCanon(Intern("x"), false)
	obj.Protect(i)
	spec := specWith(t, map[string]Value{"obj": CtxVal(obj)})

	v := Int(5)
	_, err := DoPath(pathOf(t, "obj/x"), spec, &v, nil)
	if _, ok := err.(*AccessError); !ok {
		t.Fatalf("want access error, got %v", err)
	}
	if obj.Get(i).Int() != 1 {
		t.Fatal("protected slot mutated")
	}
}

func Test_Path_Block_Pickers(t *testing.T) {
	blk := scanOne(t, "[a 1 b 2 c 3]")
	spec := specWith(t, map[string]Value{"data": blk})

	if got := doPath(t, "data/2", spec); got.Int() != 1 {
		t.Fatalf("integer picker: %v", got)
	}
	if got := doPath(t, "data/b", spec); got.Int() != 2 {
		t.Fatalf("word picker: %v", got)
	}
	if got := doPath(t, "data/missing", spec); got.Tag != VTBlank {
		t.Fatalf("absent selector: %v", got)
	}
	if got := doPath(t, "data/99", spec); got.Tag != VTBlank {
		t.Fatalf("out of range: %v", got)
	}

	doSetPath(t, "data/b", spec, Int(20))
	if got := doPath(t, "data/b", spec); got.Int() != 20 {
		t.Fatalf("select-write: %v", got)
	}
}

func Test_Path_Nested_Containers(t *testing.T) {
	blk := scanOne(t, "[inner [x 5]]")
	spec := specWith(t, map[string]Value{"data": blk})
	if got := doPath(t, "data/inner/x", spec); got.Int() != 5 {
		t.Fatalf("nested: %v", got)
	}
}

// Group pickers evaluate through the injected evaluator.
func Test_Path_Group_Picker(t *testing.T) {
	blk := scanOne(t, "[10 20 30]")
	spec := specWith(t, map[string]Value{"data": blk})
	if got := doPath(t, "data/(1 + 2)", spec); got.Int() != 30 {
		t.Fatalf("group picker: %v", got)
	}
}

func Test_Path_GetWord_Picker(t *testing.T) {
	blk := scanOne(t, "[10 20 30]")
	spec := specWith(t, map[string]Value{"data": blk, "n": Int(2)})
	if got := doPath(t, "data/:n", spec); got.Int() != 20 {
		t.Fatalf("get-word picker: %v", got)
	}
}

func Test_Path_Throw_Propagates(t *testing.T) {
	blk := scanOne(t, "[10]")
	spec := specWith(t, map[string]Value{"data": blk})
	_, err := DoPath(pathOf(t, "data/(boom)"), spec, nil, throwEval{})
	ts, ok := IsThrow(err)
	if !ok || ts.Val.Int() != 42 {
		t.Fatalf("throw lost: %v", err)
	}
}

// Pair writes cannot vend a reference; the engine writes the rebuilt cell
// back into the slot the pair came from.
func Test_Path_Pair_Immediate_Writeback(t *testing.T) {
	spec := specWith(t, map[string]Value{"p": PairVal(1, 2)})

	if got := doPath(t, "p/x", spec); got.Dec() != 1 {
		t.Fatalf("pair read: %v", got)
	}
	doSetPath(t, "p/y", spec, Int(7))

	i, _ := spec.FindCanon(Intern("p"), false)
	pr := spec.Get(i).Pair()
	if pr.X != 1 || pr.Y != 7 {
		t.Fatalf("writeback missed: %+v", pr)
	}
}

func Test_Path_Pair_In_Block_Writeback(t *testing.T) {
	blk := Blk(PairVal(3, 4))
	spec := specWith(t, map[string]Value{"data": blk})

	doSetPath(t, "data/1/x", spec, Int(30))
	got := blk.Arr().At(0).Pair()
	if got.X != 30 || got.Y != 4 {
		t.Fatalf("pair in block: %+v", got)
	}
}

func Test_Path_Tuple_Immediate(t *testing.T) {
	spec := specWith(t, map[string]Value{"ver": scanOne(t, "1.2.3")})
	if got := doPath(t, "ver/3", spec); got.Int() != 3 {
		t.Fatalf("tuple read: %v", got)
	}
	doSetPath(t, "ver/3", spec, Int(9))
	i, _ := spec.FindCanon(Intern("ver"), false)
	tu := spec.Get(i).Tuple()
	if tu.Bytes[2] != 9 {
		t.Fatalf("tuple writeback: %+v", tu)
	}
}

func Test_Path_String_Mutation(t *testing.T) {
	s := Str("abc")
	spec := specWith(t, map[string]Value{"s": s})
	if got := doPath(t, "s/2", spec); got.Char() != 'b' {
		t.Fatalf("string read: %v", got)
	}
	doSetPath(t, "s/2", spec, Chr('X'))
	if string(s.Strs().Runes) != "aXc" {
		t.Fatalf("string write: %q", string(s.Strs().Runes))
	}
}

func Test_Path_Date_Fields(t *testing.T) {
	spec := specWith(t, map[string]Value{"d": scanOne(t, "12-Dec-2012")})
	if got := doPath(t, "d/year", spec); got.Int() != 2012 {
		t.Fatalf("year: %v", got)
	}
	if got := doPath(t, "d/time", spec); got.Tag != VTBlank {
		t.Fatalf("dateless time: %v", got)
	}
	doSetPath(t, "d/day", spec, Int(25))
	i, _ := spec.FindCanon(Intern("d"), false)
	if spec.Get(i).Date().Day != 25 {
		t.Fatal("day writeback missed")
	}
}

func Test_Path_Void_Picker_Fails(t *testing.T) {
	blk := scanOne(t, "[1]")
	spec := specWith(t, map[string]Value{"data": blk, "v": Void})
	_, err := DoPath(pathOf(t, "data/:v"), spec, nil, nil)
	pe, ok := err.(*PathError)
	if !ok || pe.Kind != ErrNoValue {
		t.Fatalf("void picker: %v", err)
	}
}

func Test_Path_Unhandled_Types(t *testing.T) {
	spec := specWith(t, map[string]Value{"n": Int(5)})
	_, err := DoPath(pathOf(t, "n/field"), spec, nil, nil)
	pe, ok := err.(*PathError)
	if !ok || pe.Kind != ErrBadPathSelect {
		t.Fatalf("select error: %v", err)
	}

	v := Int(1)
	_, err = DoPath(pathOf(t, "n/field"), spec, &v, nil)
	pe, ok = err.(*PathError)
	if !ok || pe.Kind != ErrBadPathPoke {
		t.Fatalf("poke error: %v", err)
	}
}

// Refinements collect forward and reverse exactly once: popping from the
// end of the stack yields source order.
func Test_Path_Refinement_Collection(t *testing.T) {
	fn := FunVal(&Function{Name: Intern("emit")})
	spec := specWith(t, map[string]Value{"emit": fn, "flag": True, "off": False})

	res, err := DoPath(pathOf(t, "emit/a/b/c"), spec, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Tag != VTFunction {
		t.Fatalf("walk result: %v", res.Value)
	}
	if res.Label == nil || !res.Label.Equal(Intern("emit")) {
		t.Fatalf("label: %v", res.Label)
	}
	got := make([]string, len(res.Refines))
	for i, s := range res.Refines {
		got[i] = s.Spelling()
	}
	if !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("side stack: %v", got)
	}
	forward := []string{}
	for i := len(res.Refines) - 1; i >= 0; i-- {
		forward = append(forward, res.Refines[i].Spelling())
	}
	if !reflect.DeepEqual(forward, []string{"a", "b", "c"}) {
		t.Fatalf("pop order: %v", forward)
	}
}

func Test_Path_Refinement_GetWord_Skip(t *testing.T) {
	fn := FunVal(&Function{Name: Intern("emit")})
	spec := specWith(t, map[string]Value{
		"emit": fn, "on": True, "off": False, "missingly": Blank,
	})
	res, err := DoPath(pathOf(t, "emit/:on/:off/:missingly"), spec, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Refines) != 1 || res.Refines[0].Spelling() != "on" {
		t.Fatalf("conditional refinements: %v", res.Refines)
	}
}

func Test_Path_Refinement_NonWord_Fails(t *testing.T) {
	fn := FunVal(&Function{Name: Intern("emit")})
	spec := specWith(t, map[string]Value{"emit": fn})
	_, err := DoPath(pathOf(t, "emit/3"), spec, nil, nil)
	pe, ok := err.(*PathError)
	if !ok || pe.Kind != ErrBadRefine {
		t.Fatalf("bad refine: %v", err)
	}
}

func Test_Path_Single_Element_PassThrough(t *testing.T) {
	spec := specWith(t, map[string]Value{"solo": Int(11)})
	p := ArrTagged(VTPath, &Array{Elems: []Value{Word("solo")}})
	res, err := DoPath(p, spec, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Int() != 11 {
		t.Fatalf("pass-through: %v", res.Value)
	}
}

func Test_Path_Unbound_Word(t *testing.T) {
	spec := NewContext(0)
	_, err := DoPath(pathOf(t, "ghost/x"), spec, nil, nil)
	pe, ok := err.(*PathError)
	if !ok || pe.Kind != ErrNoValue {
		t.Fatalf("unbound head: %v", err)
	}
}

// ---------- pick / poke ----------

func Test_Pick_Block_And_Context(t *testing.T) {
	blk := scanOne(t, "[10 20]")
	if v, err := Pick(blk, Int(2)); err != nil || v.Int() != 20 {
		t.Fatalf("pick block: %v %v", v, err)
	}
	if v, err := Pick(blk, Int(5)); err != nil || v.Tag != VTVoid {
		t.Fatalf("pick out of range: %v %v", v, err)
	}
	if v, err := Pick(blk, Word("absent")); err != nil || v.Tag != VTVoid {
		t.Fatalf("pick absent word: %v %v", v, err)
	}

	obj := ctxFrom(t, "x: 1")
	if v, err := Pick(CtxVal(obj), Word("x")); err != nil || v.Int() != 1 {
		t.Fatalf("pick context: %v %v", v, err)
	}
}

func Test_Poke_Series(t *testing.T) {
	blk := scanOne(t, "[1 2 3]")
	if _, err := Poke(blk, Int(2), Str("two")); err != nil {
		t.Fatal(err)
	}
	if blk.Arr().At(1).Tag != VTString {
		t.Fatal("poke did not land")
	}

	bin := Bin([]byte{1, 2, 3})
	if _, err := Poke(bin, Int(1), Int(255)); err != nil {
		t.Fatal(err)
	}
	if bin.Bins().Bytes[0] != 255 {
		t.Fatal("binary poke missed")
	}
	if _, err := Poke(bin, Int(1), Int(300)); err == nil {
		t.Fatal("byte range unchecked")
	}
}

// Poking a packed value returns the rebuilt cell for the caller to store.
func Test_Poke_Pair_Returns_Rebuilt(t *testing.T) {
	out, err := Poke(PairVal(1, 2), Word("x"), Int(9))
	if err != nil {
		t.Fatal(err)
	}
	pr := out.Pair()
	if pr.X != 9 || pr.Y != 2 {
		t.Fatalf("rebuilt pair: %+v", pr)
	}
}

func Test_Pick_Unsupported(t *testing.T) {
	_, err := Pick(Int(3), Int(1))
	pe, ok := err.(*PathError)
	if !ok || pe.Kind != ErrBadPathSelect {
		t.Fatalf("unsupported pick: %v", err)
	}
}

func Test_Port_Actor_Interception(t *testing.T) {
	port := NewContext(1)
	calls := []string{}
	port.Actor = &PortActor{
		Pick: func(c *Context, picker Value) (Value, error) {
			calls = append(calls, "pick")
			return Str("intercepted"), nil
		},
		Poke: func(c *Context, picker Value, val Value) (Value, error) {
			calls = append(calls, "poke")
			return val, nil
		},
	}

	v, err := Pick(CtxVal(port), Word("anything"))
	if err != nil || string(v.Strs().Runes) != "intercepted" {
		t.Fatalf("actor pick: %v %v", v, err)
	}
	if _, err := Poke(CtxVal(port), Word("k"), Int(1)); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(calls, []string{"pick", "poke"}) {
		t.Fatalf("actor calls: %v", calls)
	}
}
