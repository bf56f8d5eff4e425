package parser

import (
	"encoding/json"
)

// Record is one node of a client diagnostics trace. The top-level line and
// every nested child share this shape.
type Record struct {
	Name      string       `json:"name,omitempty"`
	StartTime string       `json:"start datetime,omitempty"`
	Duration  float64      `json:"duration in milliseconds"`
	Data      *NodeData    `json:"data,omitempty"`
	Children  []*Record    `json:"children,omitempty"`
	Summary   *CallSummary `json:"Summary,omitempty"`
}

// NodeData carries the payloads a trace node may hold
type NodeData struct {
	RequestStats *ClientSideRequestStats `json:"Client Side Request Stats,omitempty"`
	SystemInfo   json.RawMessage         `json:"System Info,omitempty"`
	ClientConfig json.RawMessage         `json:"Client Configuration,omitempty"`
}

// CallSummary counts backend calls keyed by "(status, substatus)"
type CallSummary struct {
	DirectCalls  map[string]int `json:"DirectCalls,omitempty"`
	GatewayCalls map[string]int `json:"GatewayCalls,omitempty"`
}

// ClientSideRequestStats aggregates the store calls made for one request
type ClientSideRequestStats struct {
	ID                      string                    `json:"Id,omitempty"`
	ContactedReplicas       []ContactedReplica        `json:"ContactedReplicas,omitempty"`
	RegionsContacted        []string                  `json:"RegionsContacted,omitempty"`
	FailedReplicas          []string                  `json:"FailedReplicas,omitempty"`
	StoreResponseStatistics []StoreResponseStatistics `json:"StoreResponseStatistics,omitempty"`
}

// ContactedReplica is a replica address and how often it was contacted
type ContactedReplica struct {
	Count int    `json:"Count"`
	URI   string `json:"Uri"`
}

// StoreResponseStatistics describes a single backend call
type StoreResponseStatistics struct {
	ResponseTimeUTC  string       `json:"ResponseTimeUTC,omitempty"`
	DurationInMs     float64      `json:"DurationInMs"`
	ResourceType     string       `json:"ResourceType,omitempty"`
	OperationType    string       `json:"OperationType,omitempty"`
	LocationEndpoint string       `json:"LocationEndpoint,omitempty"`
	StoreResult      *StoreResult `json:"StoreResult,omitempty"`
}

// StoreResult is the replica's answer to a backend call
type StoreResult struct {
	ActivityID            string                    `json:"ActivityId,omitempty"`
	StatusCode            string                    `json:"StatusCode,omitempty"`
	SubStatusCode         string                    `json:"SubStatusCode,omitempty"`
	LSN                   int64                     `json:"LSN,omitempty"`
	PartitionKeyRangeID   string                    `json:"PartitionKeyRangeId,omitempty"`
	GlobalCommittedLSN    int64                     `json:"GlobalCommittedLSN,omitempty"`
	ItemLSN               int64                     `json:"ItemLSN,omitempty"`
	SessionToken          string                    `json:"SessionToken,omitempty"`
	CurrentReplicaSetSize int                       `json:"CurrentReplicaSetSize,omitempty"`
	StorePhysicalAddress  string                    `json:"StorePhysicalAddress,omitempty"`
	RequestCharge         float64                   `json:"RequestCharge,omitempty"`
	RetryAfterInMs        string                    `json:"RetryAfterInMs,omitempty"`
	BELatencyInMs         string                    `json:"BELatencyInMs,omitempty"`
	ReplicaHealthStatuses []string                  `json:"ReplicaHealthStatuses,omitempty"`
	TransportTimeline     *TransportRequestTimeline `json:"transportRequestTimeline,omitempty"`
	TransportException    string                    `json:"TransportException,omitempty"`
}

// TransportRequestTimeline is the RNTBD transport view of a backend call
type TransportRequestTimeline struct {
	RequestTimeline             []TimelineEvent  `json:"requestTimeline,omitempty"`
	ServiceEndpointStats        *EndpointStats   `json:"serviceEndpointStats,omitempty"`
	ConnectionStats             *ConnectionStats `json:"connectionStats,omitempty"`
	RequestSizeInBytes          int64            `json:"requestSizeInBytes,omitempty"`
	ResponseMetadataSizeInBytes int64            `json:"responseMetadataSizeInBytes,omitempty"`
	ResponseBodySizeInBytes     int64            `json:"responseBodySizeInBytes,omitempty"`
}

// TimelineEvent is one phase of a transport request
type TimelineEvent struct {
	Event        string  `json:"event"`
	StartTimeUTC string  `json:"startTimeUtc,omitempty"`
	DurationInMs float64 `json:"durationInMs"`
}

// EndpointStats holds per-endpoint counters at request time
type EndpointStats struct {
	InflightRequests int `json:"inflightRequests"`
	OpenConnections  int `json:"openConnections"`
}

// ConnectionStats holds per-connection counters at request time
type ConnectionStats struct {
	WaitForConnectionInit string `json:"waitforConnectionInit,omitempty"`
	CallsPendingReceive   int    `json:"callsPendingReceive"`
	LastSendAttempt       string `json:"lastSendAttempt,omitempty"`
	LastSend              string `json:"lastSend,omitempty"`
	LastReceive           string `json:"lastReceive,omitempty"`
}

// Entry pairs a parsed record with the line it came from. Raw is kept
// verbatim for display and is never modified.
type Entry struct {
	Record     *Record `json:"record"`
	Raw        string  `json:"-"`
	LineNumber int     `json:"line_number"`
	Repaired   bool    `json:"repaired"`
}

// Duration returns the record duration in milliseconds
func (e *Entry) Duration() float64 {
	if e == nil || e.Record == nil {
		return 0
	}
	return e.Record.Duration
}

// Operation returns the record's operation name
func (e *Entry) Operation() string {
	if e == nil || e.Record == nil {
		return ""
	}
	return e.Record.Name
}

// Batch is the outcome of parsing a whole input
type Batch struct {
	Entries    []*Entry       `json:"entries"`
	TotalLines int            `json:"total_lines"`
	Repaired   int            `json:"repaired"`
	Failures   map[Reason]int `json:"failures,omitempty"`
}

// Parsed returns the number of lines that produced a record
func (b *Batch) Parsed() int {
	return len(b.Entries)
}
