// Package network flattens diagnostics trees into backend call records
package network

import (
	"strconv"
	"strings"
)

// Phase is one transport timeline event of a backend call
type Phase struct {
	Event      string  `json:"event"`
	StartTime  string  `json:"start_time,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// Interaction is a single backend call made on behalf of a diagnostics
// record. Only calls with a physical store address are extracted.
type Interaction struct {
	Operation        string  `json:"operation"`
	ResourceType     string  `json:"resource_type,omitempty"`
	OperationType    string  `json:"operation_type,omitempty"`
	StatusCode       string  `json:"status_code,omitempty"`
	SubStatusCode    string  `json:"sub_status_code,omitempty"`
	Duration         float64 `json:"duration_ms"`
	ResponseTime     string  `json:"response_time,omitempty"`
	LocationEndpoint string  `json:"location_endpoint,omitempty"`
	RequestCharge    float64 `json:"request_charge,omitempty"`

	Created                   string  `json:"created,omitempty"`
	ChannelAcquisitionStarted string  `json:"channel_acquisition_started,omitempty"`
	Pipelined                 string  `json:"pipelined,omitempty"`
	TransitTime               string  `json:"transit_time,omitempty"`
	Received                  string  `json:"received,omitempty"`
	Completed                 string  `json:"completed,omitempty"`
	Phases                    []Phase `json:"phases,omitempty"`
	TerminalEvent             string  `json:"terminal_event,omitempty"`
	BottleneckPhase           string  `json:"bottleneck_phase,omitempty"`
	BottleneckDuration        float64 `json:"bottleneck_duration_ms,omitempty"`

	BackendLatency      *float64 `json:"backend_latency_ms,omitempty"`
	InflightRequests    int      `json:"inflight_requests,omitempty"`
	OpenConnections     int      `json:"open_connections,omitempty"`
	CallsPendingReceive int      `json:"calls_pending_receive,omitempty"`

	PhysicalAddress     string `json:"physical_address"`
	PartitionKeyRangeID string `json:"partition_key_range_id,omitempty"`
	PartitionID         string `json:"partition_id,omitempty"`
	ReplicaID           string `json:"replica_id,omitempty"`
	ReplicaRole         string `json:"replica_role,omitempty"`
	Tenant              string `json:"tenant,omitempty"`

	Exception        string `json:"exception,omitempty"`
	ExceptionMessage string `json:"exception_message,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`

	LineNumber int    `json:"line_number"`
	Raw        string `json:"-"`
}

// Status returns "status/substatus"
func (i *Interaction) Status() string {
	return i.StatusCode + "/" + i.SubStatusCode
}

// Resource returns "resource/operation type"
func (i *Interaction) Resource() string {
	return i.ResourceType + "/" + i.OperationType
}

// Column is a named, statically declared interaction field used by the
// tabular renderers.
type Column struct {
	Name  string
	Value func(*Interaction) string
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Columns lists the interaction fields rendered in tables, in order
var Columns = []Column{
	{Name: "line", Value: func(i *Interaction) string { return strconv.Itoa(i.LineNumber) }},
	{Name: "operation", Value: func(i *Interaction) string { return i.Operation }},
	{Name: "resource_type", Value: func(i *Interaction) string { return i.ResourceType }},
	{Name: "operation_type", Value: func(i *Interaction) string { return i.OperationType }},
	{Name: "status_code", Value: func(i *Interaction) string { return i.StatusCode }},
	{Name: "sub_status_code", Value: func(i *Interaction) string { return i.SubStatusCode }},
	{Name: "duration_ms", Value: func(i *Interaction) string { return formatMs(i.Duration) }},
	{Name: "backend_latency_ms", Value: func(i *Interaction) string {
		if i.BackendLatency == nil {
			return ""
		}
		return formatMs(*i.BackendLatency)
	}},
	{Name: "terminal_event", Value: func(i *Interaction) string { return i.TerminalEvent }},
	{Name: "bottleneck_phase", Value: func(i *Interaction) string { return i.BottleneckPhase }},
	{Name: "inflight_requests", Value: func(i *Interaction) string { return strconv.Itoa(i.InflightRequests) }},
	{Name: "open_connections", Value: func(i *Interaction) string { return strconv.Itoa(i.OpenConnections) }},
	{Name: "calls_pending_receive", Value: func(i *Interaction) string { return strconv.Itoa(i.CallsPendingReceive) }},
	{Name: "partition_key_range_id", Value: func(i *Interaction) string { return i.PartitionKeyRangeID }},
	{Name: "partition_id", Value: func(i *Interaction) string { return i.PartitionID }},
	{Name: "replica_id", Value: func(i *Interaction) string { return i.ReplicaID }},
	{Name: "tenant", Value: func(i *Interaction) string { return i.Tenant }},
	{Name: "error_code", Value: func(i *Interaction) string { return i.ErrorCode }},
	{Name: "exception_message", Value: func(i *Interaction) string { return i.ExceptionMessage }},
	{Name: "physical_address", Value: func(i *Interaction) string { return i.PhysicalAddress }},
}

// ColumnNames returns the header row for Columns
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// Row renders the interaction as a row matching Columns
func (i *Interaction) Row() []string {
	row := make([]string, len(Columns))
	for n, c := range Columns {
		row[n] = strings.TrimSpace(c.Value(i))
	}
	return row
}
