// Package trace collects per-instruction scan decisions.
//
// The scanners themselves only emit their matches; when an operator wonders
// why a variable was not picked up, the answer lives here. A Collector
// records one Decision per inspected instruction of the scanned kinds, and
// Format renders them as a per-function report. This keeps debug logic
// isolated from the scanning code.
package trace

// Kind identifies the instruction kind a decision was made about.
type Kind string

// Instruction kinds inspected by the scanners.
const (
	KindAlloca Kind = "alloca"
	KindStore  Kind = "store"
	KindField  Kind = "field-index"
)

// Reason explains why an instruction was or was not selected.
type Reason string

// The closed set of decision reasons.
const (
	// ReasonMatched: the name was tested and the pattern matched.
	ReasonMatched Reason = "matched"
	// ReasonUnnamed: there was no symbolic name to test the pattern against.
	ReasonUnnamed Reason = "unnamed"
	// ReasonNoMatch: the name was tested and the pattern did not match.
	ReasonNoMatch Reason = "no match"
	// ReasonNonConstant: the final index operand is computed at runtime, so
	// the instruction reveals nothing about aggregate layout.
	ReasonNonConstant Reason = "non-constant index"
)

// Decision records the outcome of inspecting a single instruction.
type Decision struct {
	Kind   Kind
	Block  string // label of the containing basic block
	Name   string // symbolic name the pattern was tested against, if any
	Reason Reason
	Index  int64 // resolved field index (matched field-index decisions only)
}

// Matched reports whether the decision selected the instruction.
func (d Decision) Matched() bool { return d.Reason == ReasonMatched }

// Collector accumulates decisions for one scanned function.
//
// A nil *Collector is valid and records nothing, so scanners pay nothing
// when tracing is disabled.
type Collector struct {
	decisions []Decision
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record stores a single decision.
func (c *Collector) Record(d Decision) {
	if c == nil {
		return
	}
	c.decisions = append(c.decisions, d)
}

// Decisions returns the recorded decisions in traversal order.
func (c *Collector) Decisions() []Decision {
	if c == nil {
		return nil
	}
	return c.decisions
}
