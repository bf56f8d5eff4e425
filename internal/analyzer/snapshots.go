package analyzer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/yildizm/DiagSum/internal/diagtree"
	"github.com/yildizm/DiagSum/internal/parser"
)

var snapshotParsers fastjson.ParserPool

// Snapshots collects the system and client configuration samples carried
// by the entries' trees, deduplicated and ordered by time.
func Snapshots(entries []*parser.Entry) ([]SystemSnapshot, []ClientConfigSnapshot) {
	p := snapshotParsers.Get()
	defer snapshotParsers.Put(p)

	systems := make(map[string]SystemSnapshot)
	configs := make(map[ClientConfigSnapshot]struct{})

	for _, e := range entries {
		if e == nil || e.Record == nil {
			continue
		}
		diagtree.Walk(e.Record, func(r *parser.Record) bool {
			if r.Data == nil {
				return true
			}
			if len(r.Data.SystemInfo) > 0 {
				if v, err := p.ParseBytes(r.Data.SystemInfo); err == nil {
					for _, s := range systemSamples(v) {
						if _, seen := systems[s.Time]; !seen {
							systems[s.Time] = s
						}
					}
				}
			}
			if len(r.Data.ClientConfig) > 0 {
				if v, err := p.ParseBytes(r.Data.ClientConfig); err == nil {
					configs[clientConfig(v)] = struct{}{}
				}
			}
			return true
		})
	}

	systemList := make([]SystemSnapshot, 0, len(systems))
	for _, s := range systems {
		systemList = append(systemList, s)
	}
	sort.Slice(systemList, func(i, j int) bool { return systemList[i].Time < systemList[j].Time })

	configList := make([]ClientConfigSnapshot, 0, len(configs))
	for c := range configs {
		configList = append(configList, c)
	}
	sort.Slice(configList, func(i, j int) bool {
		if configList[i].CreatedTime != configList[j].CreatedTime {
			return configList[i].CreatedTime < configList[j].CreatedTime
		}
		return configList[i].MachineID < configList[j].MachineID
	})

	if len(systemList) == 0 {
		systemList = nil
	}
	if len(configList) == 0 {
		configList = nil
	}
	return systemList, configList
}

func systemSamples(v *fastjson.Value) []SystemSnapshot {
	history := v
	if v.Type() == fastjson.TypeObject {
		history = v.Get("systemHistory")
	}
	if history == nil || history.Type() != fastjson.TypeArray {
		return nil
	}

	items, _ := history.Array()
	out := make([]SystemSnapshot, 0, len(items))
	for _, item := range items {
		if item.Type() != fastjson.TypeObject {
			continue
		}
		out = append(out, SystemSnapshot{
			Time:               text(item, "dateUtc"),
			CPU:                number(item, "cpu"),
			MemoryKB:           number(item, "memory"),
			ThreadStarving:     flag(item, "threadInfo", "isThreadStarving"),
			ThreadWaitMs:       number(item, "threadInfo", "threadWaitIntervalInMs"),
			AvailableThreads:   int(number(item, "threadInfo", "availableThreads")),
			MinThreads:         int(number(item, "threadInfo", "minThreads")),
			MaxThreads:         int(number(item, "threadInfo", "maxThreads")),
			OpenTCPConnections: int(number(item, "numberOfOpenTcpConnection")),
		})
	}
	return out
}

func clientConfig(v *fastjson.Value) ClientConfigSnapshot {
	return ClientConfigSnapshot{
		CreatedTime:       text(v, "Client Created Time Utc"),
		MachineID:         text(v, "MachineId"),
		ClientsCreated:    int(number(v, "NumberOfClientsCreated")),
		ActiveClients:     int(number(v, "NumberOfActiveClients")),
		ConnectionMode:    text(v, "ConnectionMode"),
		UserAgent:         text(v, "User Agent"),
		GatewayConfig:     text(v, "ConnectionConfig", "gw"),
		RntbdConfig:       text(v, "ConnectionConfig", "rntbd"),
		OtherConfig:       text(v, "ConnectionConfig", "other"),
		ConsistencyConfig: text(v, "ConsistencyConfig"),
		ProcessorCount:    int(number(v, "ProcessorCount")),
	}
}

// number reads a numeric field that may also be encoded as a string
func number(v *fastjson.Value, keys ...string) float64 {
	x := v.Get(keys...)
	if x == nil {
		return 0
	}
	switch x.Type() {
	case fastjson.TypeNumber:
		return x.GetFloat64()
	case fastjson.TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x.GetStringBytes())), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func text(v *fastjson.Value, keys ...string) string {
	x := v.Get(keys...)
	if x == nil {
		return ""
	}
	if x.Type() == fastjson.TypeString {
		return string(x.GetStringBytes())
	}
	return x.String()
}

func flag(v *fastjson.Value, keys ...string) bool {
	x := v.Get(keys...)
	if x == nil {
		return false
	}
	switch x.Type() {
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeString:
		return strings.EqualFold(string(x.GetStringBytes()), "true")
	}
	return false
}
