package analyzer

import (
	"github.com/yildizm/DiagSum/internal/network"
	"github.com/yildizm/DiagSum/internal/parser"
	"github.com/yildizm/DiagSum/internal/stats"
)

// DefaultInteractionLimit caps the flat interaction list
const DefaultInteractionLimit = 100

func interactionDuration(i *network.Interaction) float64 { return i.Duration }

func entryDuration(e *parser.Entry) float64 { return e.Duration() }

func operationKey(i *network.Interaction) string { return i.Operation }

func exceptionKey(i *network.Interaction) string { return i.ExceptionMessage }

func terminalEventKey(i *network.Interaction) string { return i.TerminalEvent }

func bottleneckKey(i *network.Interaction) string { return i.BottleneckPhase }

// Aggregation is the outcome of Aggregate
type Aggregation struct {
	Interactions []*network.Interaction
	Stats        stats.Summary
	Groupings    Groupings
}

// Aggregate keeps interactions slower than threshold and groups them by
// operation, resource, status, exception message, terminal transport event
// and bottleneck phase.
func Aggregate(interactions []*network.Interaction, threshold float64, limit int) *Aggregation {
	var slow []*network.Interaction
	for _, it := range interactions {
		if it != nil && it.Duration > threshold {
			slow = append(slow, it)
		}
	}

	agg := &Aggregation{Interactions: slow}
	if len(slow) == 0 {
		return agg
	}

	agg.Stats = stats.Summarize(Durations(slow, interactionDuration))

	var failed []*network.Interaction
	for _, it := range slow {
		if it.ExceptionMessage != "" {
			failed = append(failed, it)
		}
	}

	agg.Groupings = Groupings{
		Operations:      GroupBy(slow, operationKey, interactionDuration, limit),
		Resources:       GroupBy(slow, (*network.Interaction).Resource, interactionDuration, limit),
		Statuses:        GroupBy(slow, (*network.Interaction).Status, interactionDuration, limit),
		Exceptions:      GroupBy(failed, exceptionKey, interactionDuration, limit),
		TransportEvents: GroupBy(slow, terminalEventKey, interactionDuration, limit),
		Bottlenecks:     GroupBy(slow, bottleneckKey, interactionDuration, limit),
	}
	return agg
}

// HighLatency returns the entries slower than threshold, in input order
func HighLatency(entries []*parser.Entry, threshold float64) []*parser.Entry {
	var out []*parser.Entry
	for _, e := range entries {
		if e.Duration() > threshold {
			out = append(out, e)
		}
	}
	return out
}

// OperationBuckets groups entries by operation name
func OperationBuckets(entries []*parser.Entry, limit int) []*Bucket[*parser.Entry] {
	return GroupBy(entries, (*parser.Entry).Operation, entryDuration, limit)
}

// TargetOperation returns the operation with the most entries. Ties go to
// the lexically smaller name.
func TargetOperation(buckets []*Bucket[*parser.Entry]) string {
	if len(buckets) == 0 {
		return ""
	}
	return buckets[0].Key
}

// entriesFor returns the entries whose operation falls in the named bucket
func entriesFor(entries []*parser.Entry, operation string) []*parser.Entry {
	var out []*parser.Entry
	for _, e := range entries {
		name := e.Operation()
		if name == "" {
			name = noKey
		}
		if name == operation {
			out = append(out, e)
		}
	}
	return out
}

// SummarizeCalls totals the direct and gateway call counters of each
// entry's root record.
func SummarizeCalls(entries []*parser.Entry) CallSummary {
	summary := CallSummary{}
	for _, e := range entries {
		if e.Record == nil || e.Record.Summary == nil {
			continue
		}
		for k, v := range e.Record.Summary.DirectCalls {
			if summary.Direct == nil {
				summary.Direct = make(map[string]int)
			}
			summary.Direct[k] += v
			summary.DirectTotal += v
		}
		for k, v := range e.Record.Summary.GatewayCalls {
			if summary.Gateway == nil {
				summary.Gateway = make(map[string]int)
			}
			summary.Gateway[k] += v
			summary.GatewayTotal += v
		}
	}
	return summary
}
