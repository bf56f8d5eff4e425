package network

import (
	"strconv"
	"strings"

	"github.com/yildizm/DiagSum/internal/diagtree"
	"github.com/yildizm/DiagSum/internal/parser"
)

// Timeline event names as emitted by the transport layer
const (
	EventCreated                   = "Created"
	EventChannelAcquisitionStarted = "ChannelAcquisitionStarted"
	EventPipelined                 = "Pipelined"
	EventTransitTime               = "Transit Time"
	EventReceived                  = "Received"
	EventCompleted                 = "Completed"
)

// Extract builds one interaction per backend call found anywhere in the
// entries' trees. Calls without a store result or physical address are
// skipped.
func Extract(entries []*parser.Entry) []*Interaction {
	var out []*Interaction
	for _, entry := range entries {
		out = append(out, ExtractEntry(entry)...)
	}
	return out
}

// ExtractEntry builds the interactions of a single entry
func ExtractEntry(entry *parser.Entry) []*Interaction {
	if entry == nil || entry.Record == nil {
		return nil
	}

	var out []*Interaction
	for _, node := range diagtree.WithRequestStats(entry.Record) {
		for _, stat := range node.Data.RequestStats.StoreResponseStatistics {
			if stat.StoreResult == nil || strings.TrimSpace(stat.StoreResult.StorePhysicalAddress) == "" {
				continue
			}
			out = append(out, newInteraction(entry, &stat))
		}
	}
	return out
}

func newInteraction(entry *parser.Entry, stat *parser.StoreResponseStatistics) *Interaction {
	result := stat.StoreResult
	it := &Interaction{
		Operation:           entry.Operation(),
		ResourceType:        stat.ResourceType,
		OperationType:       stat.OperationType,
		StatusCode:          result.StatusCode,
		SubStatusCode:       result.SubStatusCode,
		Duration:            stat.DurationInMs,
		ResponseTime:        stat.ResponseTimeUTC,
		LocationEndpoint:    stat.LocationEndpoint,
		RequestCharge:       result.RequestCharge,
		PhysicalAddress:     result.StorePhysicalAddress,
		PartitionKeyRangeID: result.PartitionKeyRangeID,
		Exception:           result.TransportException,
		ExceptionMessage:    ExceptionMessage(result.TransportException),
		ErrorCode:           ErrorCode(result.TransportException),
		LineNumber:          entry.LineNumber,
		Raw:                 entry.Raw,
	}
	if it.Duration < 0 {
		it.Duration = 0
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(result.BELatencyInMs), 64); err == nil {
		it.BackendLatency = &v
	}

	addr := ParseAddress(result.StorePhysicalAddress)
	it.Tenant = addr.Tenant
	it.PartitionID = addr.PartitionID
	it.ReplicaID = addr.ReplicaID
	it.ReplicaRole = addr.ReplicaRole

	if tl := result.TransportTimeline; tl != nil {
		applyTimeline(it, tl)
	}
	return it
}

func applyTimeline(it *Interaction, tl *parser.TransportRequestTimeline) {
	if s := tl.ServiceEndpointStats; s != nil {
		it.InflightRequests = s.InflightRequests
		it.OpenConnections = s.OpenConnections
	}
	if c := tl.ConnectionStats; c != nil {
		it.CallsPendingReceive = c.CallsPendingReceive
	}

	for _, ev := range tl.RequestTimeline {
		phase := Phase{Event: ev.Event, StartTime: ev.StartTimeUTC, DurationMs: ev.DurationInMs}
		it.Phases = append(it.Phases, phase)

		switch normalizeEvent(ev.Event) {
		case normalizeEvent(EventCreated):
			it.Created = ev.StartTimeUTC
		case normalizeEvent(EventChannelAcquisitionStarted):
			it.ChannelAcquisitionStarted = ev.StartTimeUTC
		case normalizeEvent(EventPipelined):
			it.Pipelined = ev.StartTimeUTC
		case normalizeEvent(EventTransitTime):
			it.TransitTime = ev.StartTimeUTC
		case normalizeEvent(EventReceived):
			it.Received = ev.StartTimeUTC
		case normalizeEvent(EventCompleted):
			it.Completed = ev.StartTimeUTC
		}

		if ev.StartTimeUTC != "" {
			it.TerminalEvent = ev.Event
		}
		if ev.DurationInMs > it.BottleneckDuration {
			it.BottleneckPhase = ev.Event
			it.BottleneckDuration = ev.DurationInMs
		}
	}
}

func normalizeEvent(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// PhaseDuration returns the duration of the named phase, or zero
func (i *Interaction) PhaseDuration(event string) float64 {
	want := normalizeEvent(event)
	for _, p := range i.Phases {
		if normalizeEvent(p.Event) == want {
			return p.DurationMs
		}
	}
	return 0
}
