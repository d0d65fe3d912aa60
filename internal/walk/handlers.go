package walk

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"github.com/irprobe/irprobe/internal/match"
	"github.com/irprobe/irprobe/internal/trace"
)

// =============================================================================
// Handler Implementations
//
// One handler per instruction kind the engine resolves. Each handler appends
// references into a caller-owned collection; nothing is ever cleared, so
// results accumulate across walks.
// =============================================================================

// AllocaScanner selects stack allocations whose declared name matches the
// pattern.
//
// Example:
//
//	%buf_1 = alloca i32    ; pattern "^buf" → selected
//	%other = alloca i32    ; pattern "^buf" → skipped (no match)
//	%2 = alloca i32        ; unnamed → never selected
//
// Duplicate names are each selected; there is no deduplication.
type AllocaScanner struct {
	Out *[]ir.Instruction
}

// CanHandle returns true for alloca instructions.
func (s *AllocaScanner) CanHandle(inst ir.Instruction) bool {
	_, ok := inst.(*ir.InstAlloca)
	return ok
}

// Handle appends inst to the output if its name matches.
func (s *AllocaScanner) Handle(inst ir.Instruction, ctx *Context) {
	alloca := inst.(*ir.InstAlloca)
	name := alloca.Name()
	switch {
	case name == "":
		ctx.record(trace.KindAlloca, "", trace.ReasonUnnamed, 0)
	case !ctx.Matcher.MatchName(name):
		ctx.record(trace.KindAlloca, name, trace.ReasonNoMatch, 0)
	default:
		*s.Out = append(*s.Out, inst)
		ctx.record(trace.KindAlloca, name, trace.ReasonMatched, 0)
	}
}

// StoreScanner selects stores whose destination operand carries a matching
// name.
//
// The store instruction itself produces no value and has no name; the
// pattern is tested against the destination pointer. A store to an unnamed
// destination is skipped silently.
//
// Example:
//
//	store i32 1, i32* %counter_x   ; pattern "counter.*" → selected
//	store i32 2, i32* %3           ; unnamed destination → skipped
type StoreScanner struct {
	Out *[]ir.Instruction
}

// CanHandle returns true for store instructions.
func (s *StoreScanner) CanHandle(inst ir.Instruction) bool {
	_, ok := inst.(*ir.InstStore)
	return ok
}

// Handle appends inst to the output if its destination's name matches.
func (s *StoreScanner) Handle(inst ir.Instruction, ctx *Context) {
	store := inst.(*ir.InstStore)
	name, ok := match.ValueName(store.Dst)
	switch {
	case !ok:
		ctx.record(trace.KindStore, "", trace.ReasonUnnamed, 0)
	case !ctx.Matcher.MatchName(name):
		ctx.record(trace.KindStore, name, trace.ReasonNoMatch, 0)
	default:
		*s.Out = append(*s.Out, inst)
		ctx.record(trace.KindStore, name, trace.ReasonMatched, 0)
	}
}

// FieldIndexScanner resolves named element-address computations with a
// constant final index into a name → field-index map.
//
// The final index operand of a getelementptr is the field selector. When it
// is a compile-time constant, the instruction pins down "field N of the
// aggregate" and the binding name → N is recorded. A runtime-computed final
// index reveals nothing about aggregate layout, so the instruction is
// skipped regardless of its name.
//
// Example:
//
//	%field_age = getelementptr %struct.Person, %struct.Person* %p, i32 0, i32 3
//	  ; pattern "field_.*" → indices["field_age"] = 3
//	%field_dyn = getelementptr [4 x i32], [4 x i32]* %a, i32 0, i32 %i
//	  ; runtime index → contributes nothing
//
// When two computations share a name, the later one in traversal order wins.
type FieldIndexScanner struct {
	Out map[string]int64
}

// CanHandle returns true for getelementptr instructions.
func (s *FieldIndexScanner) CanHandle(inst ir.Instruction) bool {
	_, ok := inst.(*ir.InstGetElementPtr)
	return ok
}

// Handle binds the instruction's name to its constant final index, if any.
func (s *FieldIndexScanner) Handle(inst ir.Instruction, ctx *Context) {
	gep := inst.(*ir.InstGetElementPtr)
	if len(gep.Indices) == 0 {
		return
	}
	ci, ok := gep.Indices[len(gep.Indices)-1].(*constant.Int)
	if !ok {
		ctx.record(trace.KindField, gep.Name(), trace.ReasonNonConstant, 0)
		return
	}
	index := ci.X.Int64()
	name := gep.Name()
	switch {
	case name == "":
		ctx.record(trace.KindField, "", trace.ReasonUnnamed, 0)
	case !ctx.Matcher.MatchName(name):
		ctx.record(trace.KindField, name, trace.ReasonNoMatch, 0)
	default:
		s.Out[name] = index
		ctx.record(trace.KindField, name, trace.ReasonMatched, index)
	}
}
