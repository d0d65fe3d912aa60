package trace

import (
	"fmt"
	"strings"
)

// Format renders the decisions for one function as a human-readable report.
//
// Example output:
//
//	Function: main
//	  1. [alloca] %entry
//	       ├─ name: buf_1
//	       └─ selected
//	  2. [alloca] %entry
//	       └─ skipped: unnamed
//	  3. [field-index] %entry
//	       ├─ name: field_age
//	       ├─ index: 3
//	       └─ selected
func Format(funcName string, decisions []Decision) string {
	if len(decisions) == 0 {
		return ""
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Function: %s\n", funcName)
	for i, d := range decisions {
		fmt.Fprintf(&buf, "  %d. [%s] %%%s\n", i+1, d.Kind, d.Block)
		if d.Name != "" {
			fmt.Fprintf(&buf, "       ├─ name: %s\n", d.Name)
		}
		if d.Kind == KindField && d.Matched() {
			fmt.Fprintf(&buf, "       ├─ index: %d\n", d.Index)
		}
		if d.Matched() {
			fmt.Fprintf(&buf, "       └─ selected\n")
		} else {
			fmt.Fprintf(&buf, "       └─ skipped: %s\n", d.Reason)
		}
	}
	return buf.String()
}
