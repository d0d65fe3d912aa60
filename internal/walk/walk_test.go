package walk_test

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irprobe/irprobe/internal/match"
	"github.com/irprobe/irprobe/internal/trace"
	"github.com/irprobe/irprobe/internal/walk"
)

// recordingHandler accepts every instruction and records the block it was
// visited in.
type recordingHandler struct {
	blocks []string
	count  int
}

func (h *recordingHandler) CanHandle(ir.Instruction) bool { return true }

func (h *recordingHandler) Handle(_ ir.Instruction, ctx *walk.Context) {
	h.count++
	h.blocks = append(h.blocks, ctx.Block.Name())
}

// rejectingHandler accepts nothing.
type rejectingHandler struct {
	handled int
}

func (h *rejectingHandler) CanHandle(ir.Instruction) bool { return false }

func (h *rejectingHandler) Handle(ir.Instruction, *walk.Context) { h.handled++ }

func mustMatcher(t *testing.T, pattern string) *match.Matcher {
	t.Helper()
	m, err := match.Compile(pattern)
	require.NoError(t, err)
	return m
}

func TestFunc(t *testing.T) {
	t.Run("nil function traverses nothing", func(t *testing.T) {
		h := &recordingHandler{}
		walk.Func(nil, &walk.Context{Matcher: mustMatcher(t, "")}, h)
		assert.Zero(t, h.count)
	})

	t.Run("blocks and instructions are visited in order", func(t *testing.T) {
		m := ir.NewModule()
		f := m.NewFunc("main", types.Void)
		entry := f.NewBlock("entry")
		entry.NewAlloca(types.I32)
		entry.NewAlloca(types.I32)
		exit := f.NewBlock("exit")
		exit.NewAlloca(types.I32)

		h := &recordingHandler{}
		walk.Func(f, &walk.Context{Matcher: mustMatcher(t, "")}, h)
		assert.Equal(t, []string{"entry", "entry", "exit"}, h.blocks)
	})

	t.Run("first accepting handler wins", func(t *testing.T) {
		m := ir.NewModule()
		f := m.NewFunc("main", types.Void)
		entry := f.NewBlock("entry")
		entry.NewAlloca(types.I32)

		reject := &rejectingHandler{}
		first := &recordingHandler{}
		second := &recordingHandler{}
		walk.Func(f, &walk.Context{Matcher: mustMatcher(t, "")}, reject, first, second)
		assert.Zero(t, reject.handled)
		assert.Equal(t, 1, first.count)
		assert.Zero(t, second.count)
	})
}

func TestScanners(t *testing.T) {
	newFunc := func() (*ir.Func, *ir.Block) {
		m := ir.NewModule()
		f := m.NewFunc("main", types.Void)
		return f, f.NewBlock("entry")
	}

	t.Run("alloca scanner emits one decision per alloca", func(t *testing.T) {
		f, entry := newFunc()
		a := entry.NewAlloca(types.I32)
		a.SetName("buf_1")
		b := entry.NewAlloca(types.I32)
		b.SetName("other")
		entry.NewAlloca(types.I32)

		var out []ir.Instruction
		collector := trace.NewCollector()
		ctx := &walk.Context{Matcher: mustMatcher(t, "^buf"), Trace: collector}
		walk.Func(f, ctx, &walk.AllocaScanner{Out: &out})

		require.Len(t, out, 1)
		decisions := collector.Decisions()
		require.Len(t, decisions, 3)
		assert.Equal(t, trace.ReasonMatched, decisions[0].Reason)
		assert.Equal(t, "buf_1", decisions[0].Name)
		assert.Equal(t, trace.ReasonNoMatch, decisions[1].Reason)
		assert.Equal(t, trace.ReasonUnnamed, decisions[2].Reason)
		for _, d := range decisions {
			assert.Equal(t, trace.KindAlloca, d.Kind)
			assert.Equal(t, "entry", d.Block)
		}
	})

	t.Run("store scanner decides on the destination", func(t *testing.T) {
		f, entry := newFunc()
		dst := entry.NewAlloca(types.I32)
		dst.SetName("counter_x")
		tmp := entry.NewAlloca(types.I32)
		entry.NewStore(constant.NewInt(types.I32, 1), dst)
		entry.NewStore(constant.NewInt(types.I32, 2), tmp)

		var out []ir.Instruction
		collector := trace.NewCollector()
		ctx := &walk.Context{Matcher: mustMatcher(t, "counter"), Trace: collector}
		walk.Func(f, ctx, &walk.StoreScanner{Out: &out})

		require.Len(t, out, 1)
		var storeDecisions []trace.Decision
		for _, d := range collector.Decisions() {
			if d.Kind == trace.KindStore {
				storeDecisions = append(storeDecisions, d)
			}
		}
		require.Len(t, storeDecisions, 2)
		assert.Equal(t, trace.ReasonMatched, storeDecisions[0].Reason)
		assert.Equal(t, trace.ReasonUnnamed, storeDecisions[1].Reason)
	})

	t.Run("field scanner records resolved index and skip reasons", func(t *testing.T) {
		idxParam := ir.NewParam("i", types.I32)
		m := ir.NewModule()
		f := m.NewFunc("main", types.Void, idxParam)
		entry := f.NewBlock("entry")

		person := types.NewStruct(types.I32, types.I32, types.I32, types.I32)
		p := entry.NewAlloca(person)
		p.SetName("p")
		age := entry.NewGetElementPtr(person, p,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 3))
		age.SetName("field_age")

		arr := entry.NewAlloca(types.NewArray(4, types.I32))
		arr.SetName("a")
		dyn := entry.NewGetElementPtr(types.NewArray(4, types.I32), arr,
			constant.NewInt(types.I32, 0), idxParam)
		dyn.SetName("field_dyn")

		out := make(map[string]int64)
		collector := trace.NewCollector()
		ctx := &walk.Context{Matcher: mustMatcher(t, "field_"), Trace: collector}
		walk.Func(f, ctx, &walk.FieldIndexScanner{Out: out})

		assert.Equal(t, map[string]int64{"field_age": 3}, out)

		var fieldDecisions []trace.Decision
		for _, d := range collector.Decisions() {
			if d.Kind == trace.KindField {
				fieldDecisions = append(fieldDecisions, d)
			}
		}
		require.Len(t, fieldDecisions, 2)
		assert.Equal(t, trace.ReasonMatched, fieldDecisions[0].Reason)
		assert.EqualValues(t, 3, fieldDecisions[0].Index)
		assert.Equal(t, trace.ReasonNonConstant, fieldDecisions[1].Reason)
	})

	t.Run("nil collector records nothing and costs nothing", func(t *testing.T) {
		f, entry := newFunc()
		a := entry.NewAlloca(types.I32)
		a.SetName("v")

		var out []ir.Instruction
		ctx := &walk.Context{Matcher: mustMatcher(t, "")}
		walk.Func(f, ctx, &walk.AllocaScanner{Out: &out})
		assert.Len(t, out, 1)
		assert.Nil(t, ctx.Trace.Decisions())
	})
}
