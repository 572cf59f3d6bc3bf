// array.go: operations on shared cell series.
//
// Arrays are mutable through any handle that shares them. Length lives in
// the slice header; no terminator cell is ever exposed. A cell's Index picks
// the logical head within its array, with Index == len meaning the tail.
package ren

// Len reports the number of cells.
func (a *Array) Len() int { return len(a.Elems) }

// At returns the cell at i, or Void past the tail.
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.Elems) {
		return Void
	}
	return a.Elems[i]
}

// Append adds v at the tail.
func (a *Array) Append(v Value) { a.Elems = append(a.Elems, v) }

// SetAt overwrites the cell at i; out-of-range writes are ignored (callers
// range-check and raise their own errors first).
func (a *Array) SetAt(i int, v Value) {
	if i >= 0 && i < len(a.Elems) {
		a.Elems[i] = v
	}
}

// Truncate drops every cell at or past n. The scanner uses this to unwind
// the emit buffer when a token fails mid-block.
func (a *Array) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(a.Elems) {
		a.Elems = a.Elems[:n]
	}
}

// Tail view helpers for cells carrying this array.

// SeriesLen reports the number of cells from v's index to the tail.
func SeriesLen(v Value) int {
	a := v.Arr()
	return a.Len() - seriesIndex(v.Index, a.Len())
}

// SeriesAt returns the cell n slots past v's index (zero-based).
func SeriesAt(v Value, n int) Value {
	a := v.Arr()
	return a.At(seriesIndex(v.Index, a.Len()) + n)
}

// Next returns v advanced by one position, clamped to the tail.
func Next(v Value) Value {
	v.Index = seriesIndex(v.Index+1, v.Arr().Len())
	return v
}
