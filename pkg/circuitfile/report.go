package circuitfile

import (
	"fmt"
	"strings"
)

// IssueKind classifies a record-local load problem
type IssueKind string

const (
	IssueHash      IssueKind = "hash"      // Record hash missing its mark or malformed
	IssueMalformed IssueKind = "malformed" // Field missing or not a number
	IssueReference IssueKind = "reference" // Id out of range or slot of the wrong kind
	IssueDuplicate IssueKind = "duplicate" // Second record for an already filled slot
	IssueOrphan    IssueKind = "orphan"    // Connector without owner after ownership pass
	IssueUnknown   IssueKind = "unknown"   // Unrecognised record keyword
)

// Issue is a record that was skipped, or partly applied, during a load
type Issue struct {
	Kind    IssueKind
	Keyword string // Record keyword, e.g. "connector"
	Line    int    // Line of the record in the file, 0 when not applicable
	ID      int    // Slot id the record refers to, -1 when unknown
	Reason  string
}

func (i Issue) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", i.Kind, i.Keyword)
	if i.ID >= 0 {
		fmt.Fprintf(&sb, " %d", i.ID)
	}
	if i.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", i.Line)
	}
	if i.Reason != "" {
		sb.WriteString(": " + i.Reason)
	}
	return sb.String()
}

// Report summarizes a load
type Report struct {
	Components     int  // Components placed
	Connectors     int  // Connectors kept after the orphan sweep
	Connections    int  // Connection records applied
	StreamHashed   bool // File carried a circuithash record
	TamperAccepted bool // Caller continued past a stream hash mismatch
	Issues         []Issue
}

// Clean reports whether the load had no record-local issues
func (r *Report) Clean() bool {
	return len(r.Issues) == 0
}

// Count returns the number of issues of kind k
func (r *Report) Count(k IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == k {
			n++
		}
	}
	return n
}
