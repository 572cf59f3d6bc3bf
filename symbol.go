// symbol.go: the interned symbol table.
//
// A Symbol is an interned identifier. Each spelling is interned at most once;
// the first spelling interned for a given case-folded sequence becomes the
// canonical representative for every later variant. Two symbols are equal iff
// their canonical forms are the same object, which makes word comparison a
// pointer test.
package ren

import (
	"strings"
	"sync"
)

// Symbol is an interned identifier. The zero value is not a valid Symbol;
// always obtain one through Intern.
type Symbol struct {
	spelling string
	canon    *Symbol // canonical representative; self when canonical
}

// Spelling returns the original spelling used when this symbol was interned.
func (s *Symbol) Spelling() string { return s.spelling }

// Canon returns the canonical (case-folded) representative.
func (s *Symbol) Canon() *Symbol {
	if s.canon == nil {
		return s
	}
	return s.canon
}

// Equal reports case-insensitive identity: same canonical representative.
func (s *Symbol) Equal(o *Symbol) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Canon() == o.Canon()
}

func (s *Symbol) String() string { return s.spelling }

// The process-wide intern table. Reads and writes both funnel through
// Intern, which serializes internally; the rest of the core is
// single-threaded by contract.
type symbolTable struct {
	mu      sync.Mutex
	byExact map[string]*Symbol
	byFold  map[string]*Symbol
}

var symbols = symbolTable{
	byExact: make(map[string]*Symbol),
	byFold:  make(map[string]*Symbol),
}

// Intern returns the unique Symbol for spelling, creating it on first use.
func Intern(spelling string) *Symbol {
	symbols.mu.Lock()
	defer symbols.mu.Unlock()

	if s, ok := symbols.byExact[spelling]; ok {
		return s
	}
	folded := foldSpelling(spelling)
	s := &Symbol{spelling: spelling}
	if c, ok := symbols.byFold[folded]; ok {
		s.canon = c.Canon()
	} else {
		symbols.byFold[folded] = s
	}
	symbols.byExact[spelling] = s
	return s
}

// foldSpelling lower-cases a spelling with the Latin-1 tables.
func foldSpelling(spelling string) string {
	var b strings.Builder
	b.Grow(len(spelling))
	for _, r := range spelling {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}
