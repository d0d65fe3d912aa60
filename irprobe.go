// Package irprobe resolves instrumentation points in LLVM IR functions.
//
// Automated instrumentation passes insert calls to formatted I/O routines at
// specific variables, or compute addresses of specific struct fields, driven
// purely by naming conventions rather than hand-written transformation code
// per target program. irprobe supplies the introspection half of that work
// over the github.com/llir/llvm object model:
//
//   - FindAllocas and FindStores locate instructions whose symbolic names
//     match a caller-supplied regular expression, in program order.
//   - FieldIndices derives a mapping from element-address names to their
//     constant field indices, bridging naming convention to aggregate layout.
//   - FieldAddr synthesizes the address of the index-th field of an
//     aggregate behind a pointer, at a given insertion point.
//   - DeclarePrintf and DeclareScanf acquire callable handles to the
//     external formatted I/O routines, idempotently.
//
// Patterns are matched with substring semantics (regexp search, not
// full-string anchoring); callers that need exact-name matching must anchor
// their patterns themselves.
//
// All functions are pure reads over, or pure construction into, an IR graph
// owned by the caller. Nothing here locks or blocks; processing different
// functions concurrently is safe only if each call has exclusive access to
// the function it touches.
package irprobe

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/irprobe/irprobe/internal/extsym"
	"github.com/irprobe/irprobe/internal/match"
	"github.com/irprobe/irprobe/internal/walk"
)

// DeclarePrintf returns a callable handle to the external printf routine,
// declaring `i32 (i8*, ...)` in m on first use. Calling it again returns the
// existing declaration unchanged.
func DeclarePrintf(m *ir.Module) *ir.Func {
	return extsym.FormattedIO(m, extsym.PrintfName)
}

// DeclareScanf is the input-side counterpart of DeclarePrintf: a callable
// handle to the external scanf routine with the same shape of signature.
func DeclareScanf(m *ir.Module) *ir.Func {
	return extsym.FormattedIO(m, extsym.ScanfName)
}

// FindAllocas appends to allocas every stack allocation in f whose declared
// name is non-empty and matches pattern, preserving program order (block
// order, then instruction order within each block).
//
// allocas is appended to, never cleared, so results accumulate across calls.
// Unnamed allocations are never matched. An invalid pattern fails before any
// traversal, leaving allocas untouched.
func FindAllocas(f *ir.Func, pattern string, allocas *[]ir.Instruction) error {
	matcher, err := match.Compile(pattern)
	if err != nil {
		return err
	}
	walk.Func(f, &walk.Context{Matcher: matcher}, &walk.AllocaScanner{Out: allocas})
	return nil
}

// FindStores appends to stores every store in f whose destination pointer
// operand carries a name matching pattern. The pattern is tested against the
// destination's name, not the store itself; stores to unnamed destinations
// are skipped. Ordering, accumulation, and error behavior are the same as
// FindAllocas.
func FindStores(f *ir.Func, pattern string, stores *[]ir.Instruction) error {
	matcher, err := match.Compile(pattern)
	if err != nil {
		return err
	}
	walk.Func(f, &walk.Context{Matcher: matcher}, &walk.StoreScanner{Out: stores})
	return nil
}

// FieldIndices records into indices, for every element-address computation in
// f whose final index operand is a constant integer and whose own name is
// non-empty and matches pattern, the binding name → field index.
//
// When the same name is produced twice, the later computation in traversal
// order wins. Computations with a runtime final index contribute nothing,
// regardless of name. indices is written into, never cleared. An invalid
// pattern fails before any traversal, leaving indices untouched.
func FieldIndices(f *ir.Func, pattern string, indices map[string]int64) error {
	matcher, err := match.Compile(pattern)
	if err != nil {
		return err
	}
	walk.Func(f, &walk.Context{Matcher: matcher}, &walk.FieldIndexScanner{Out: indices})
	return nil
}

// FieldAddr emits, at the insertion point b, the address of the index-th
// field of the aggregate that instance points to, and names the result.
//
// The two-level {i32 0, i32 index} form first selects the pointed-to
// aggregate itself, then the field within it; this is the standard
// addressing shape when the base is a pointer to an aggregate rather than
// the aggregate value.
//
// The pointee type of instance must be an aggregate with at least index+1
// fields, so index is a small field ordinal in practice; values above
// math.MaxInt64 wrap when emitted as the index constant. That is the
// caller's responsibility and is not validated here; FieldAddr is a
// construction primitive, not a validator, and violations fail in the
// underlying builder.
func FieldAddr(b *ir.Block, instance value.Value, index uint64, name string) value.Value {
	pointee := instance.Type().(*types.PointerType).ElemType
	addr := b.NewGetElementPtr(pointee, instance,
		constant.NewInt(types.I32, 0),
		constant.NewInt(types.I32, int64(index)),
	)
	addr.SetName(name)
	return addr
}
