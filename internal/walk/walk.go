// Package walk implements order-preserving traversal of LLVM IR functions
// with per-kind instruction handlers.
//
// Architecture follows mechanism vs policy separation:
//   - Func: HOW to traverse a function (mechanism)
//   - Handlers: WHICH instructions to select and what to emit (policy)
//
// Traversal visits basic blocks in function order and instructions in block
// order. Block order is program order for straight-line code, so handlers
// observe instructions exactly once, in the order the program declares them.
// The function graph is never mutated; handlers only collect references into
// it.
package walk

import (
	"github.com/llir/llvm/ir"

	"github.com/irprobe/irprobe/internal/match"
	"github.com/irprobe/irprobe/internal/trace"
)

// Context provides shared state for instruction handlers during one walk.
type Context struct {
	// Matcher is the compiled selection pattern handlers test names against.
	Matcher *match.Matcher

	// Block is the basic block currently being traversed. Maintained by
	// Func; handlers treat it as read-only.
	Block *ir.Block

	// Trace receives one decision per inspected instruction. Nil disables
	// tracing entirely.
	Trace *trace.Collector
}

// record emits a trace decision for the current instruction, if tracing is on.
func (ctx *Context) record(kind trace.Kind, name string, reason trace.Reason, index int64) {
	if ctx.Trace == nil {
		return
	}
	block := ""
	if ctx.Block != nil {
		block = ctx.Block.Name()
	}
	ctx.Trace.Record(trace.Decision{
		Kind:   kind,
		Block:  block,
		Name:   name,
		Reason: reason,
		Index:  index,
	})
}

// Handler processes one kind of instruction.
type Handler interface {
	// CanHandle reports whether this handler processes inst.
	CanHandle(inst ir.Instruction) bool

	// Handle inspects inst and records any selection into the handler's
	// output collection.
	Handle(inst ir.Instruction, ctx *Context)
}

// Func traverses f in block order, and within each block in instruction
// order, dispatching each instruction to the first handler that accepts it.
//
// A nil function or a declaration (no blocks) traverses nothing.
func Func(f *ir.Func, ctx *Context, handlers ...Handler) {
	if f == nil {
		return
	}
	for _, block := range f.Blocks {
		ctx.Block = block
		for _, inst := range block.Insts {
			for _, h := range handlers {
				if h.CanHandle(inst) {
					h.Handle(inst, ctx)
					break
				}
			}
		}
	}
}
