package analyzer

import (
	"time"

	"github.com/yildizm/DiagSum/internal/network"
	"github.com/yildizm/DiagSum/internal/parser"
	"github.com/yildizm/DiagSum/internal/stats"
)

// Analysis is the result of one analysis run. It is built once and not
// modified afterwards.
type Analysis struct {
	ID                   string    `json:"id"`
	Source               string    `json:"source,omitempty"`
	GeneratedAt          time.Time `json:"generated_at"`
	Parser               string    `json:"parser"`
	LatencyThreshold     float64   `json:"latency_threshold_ms"`
	InteractionThreshold float64   `json:"interaction_threshold_ms"`

	TotalLines         int                   `json:"total_lines"`
	ParsedEntries      int                   `json:"parsed_entries"`
	RepairedEntries    int                   `json:"repaired_entries"`
	HighLatencyEntries int                   `json:"high_latency_entries"`
	FailedEntries      map[parser.Reason]int `json:"failed_entries,omitempty"`

	LatencyStats    stats.Summary            `json:"latency_stats"`
	HighLatency     []*parser.Entry          `json:"high_latency"`
	Operations      []*Bucket[*parser.Entry] `json:"operations"`
	TargetOperation string                   `json:"target_operation,omitempty"`

	ExtractedInteractions int                    `json:"extracted_interactions"`
	TotalInteractions     int                    `json:"total_interactions"`
	InteractionStats      stats.Summary          `json:"interaction_stats"`
	Interactions          []*network.Interaction `json:"interactions"`
	Groupings             Groupings              `json:"groupings"`

	Calls        CallSummary            `json:"calls"`
	System       []SystemSnapshot       `json:"system,omitempty"`
	ClientConfig []ClientConfigSnapshot `json:"client_config,omitempty"`
	Timeline     *Timeline              `json:"timeline,omitempty"`
	Trends       []TimelineTrend        `json:"trends,omitempty"`
}

// Failed returns the number of non-blank lines that produced no record
func (a *Analysis) Failed() int {
	n := 0
	for _, c := range a.FailedEntries {
		n += c
	}
	return n
}

// InteractionBucket is a group of backend calls
type InteractionBucket = Bucket[*network.Interaction]

// Groupings holds the interaction breakdowns of the target operation
type Groupings struct {
	Operations      []*InteractionBucket `json:"operations"`
	Resources       []*InteractionBucket `json:"resources"`
	Statuses        []*InteractionBucket `json:"statuses"`
	Exceptions      []*InteractionBucket `json:"exceptions"`
	TransportEvents []*InteractionBucket `json:"transport_events"`
	Bottlenecks     []*InteractionBucket `json:"bottlenecks"`
}

// Section is a named grouping, in display order
type Section struct {
	Name    string
	Buckets []*InteractionBucket
}

// Sections lists the groupings with their display names
func (g Groupings) Sections() []Section {
	return []Section{
		{Name: "Resource / Operation", Buckets: g.Resources},
		{Name: "Status / Sub-status", Buckets: g.Statuses},
		{Name: "Exceptions", Buckets: g.Exceptions},
		{Name: "Terminal Transport Event", Buckets: g.TransportEvents},
		{Name: "Bottleneck Phase", Buckets: g.Bottlenecks},
	}
}

// CallSummary totals backend call counts keyed by "(status, substatus)"
type CallSummary struct {
	Direct       map[string]int `json:"direct,omitempty"`
	Gateway      map[string]int `json:"gateway,omitempty"`
	DirectTotal  int            `json:"direct_total"`
	GatewayTotal int            `json:"gateway_total"`
}

// SystemSnapshot is one sample of the client machine's health
type SystemSnapshot struct {
	Time               string  `json:"time"`
	CPU                float64 `json:"cpu"`
	MemoryKB           float64 `json:"memory_kb"`
	ThreadStarving     bool    `json:"thread_starving"`
	ThreadWaitMs       float64 `json:"thread_wait_ms"`
	AvailableThreads   int     `json:"available_threads"`
	MinThreads         int     `json:"min_threads"`
	MaxThreads         int     `json:"max_threads"`
	OpenTCPConnections int     `json:"open_tcp_connections"`
}

// ClientConfigSnapshot describes the client that emitted the diagnostics
type ClientConfigSnapshot struct {
	CreatedTime       string `json:"created_time,omitempty"`
	MachineID         string `json:"machine_id,omitempty"`
	ClientsCreated    int    `json:"clients_created"`
	ActiveClients     int    `json:"active_clients"`
	ConnectionMode    string `json:"connection_mode,omitempty"`
	UserAgent         string `json:"user_agent,omitempty"`
	GatewayConfig     string `json:"gateway_config,omitempty"`
	RntbdConfig       string `json:"rntbd_config,omitempty"`
	OtherConfig       string `json:"other_config,omitempty"`
	ConsistencyConfig string `json:"consistency_config,omitempty"`
	ProcessorCount    int    `json:"processor_count"`
}
