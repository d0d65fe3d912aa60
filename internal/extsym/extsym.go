// Package extsym declares the well-known external symbols that inserted
// instrumentation code calls into.
package extsym

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// Names of the variadic formatted I/O routines from the C standard library.
// Instrumentation emits calls to these to dump or read back variables at the
// resolved points.
const (
	PrintfName = "printf"
	ScanfName  = "scanf"
)

// FormattedIO returns the declaration of the named formatted I/O routine,
// creating
//
//	declare i32 @<name>(i8* %format, ...)
//
// in m if it does not exist yet.
//
// Acquisition is idempotent: repeated calls for the same symbol return the
// same declaration and leave m.Funcs unchanged. A module that already
// defines the symbol (linked libc bitcode, say) keeps its definition.
func FormattedIO(m *ir.Module, name string) *ir.Func {
	if f := lookup(m, name); f != nil {
		return f
	}
	format := ir.NewParam("format", types.NewPointer(types.I8))
	f := m.NewFunc(name, types.I32, format)
	f.Sig.Variadic = true
	return f
}

// lookup returns the function named name in m, or nil.
func lookup(m *ir.Module, name string) *ir.Func {
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	return nil
}
