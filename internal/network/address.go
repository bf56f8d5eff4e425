package network

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	partitionPattern = regexp.MustCompile(`(?i)/partitions/([^/]+)`)
	replicaPattern   = regexp.MustCompile(`(?i)/replicas/([^/]+)`)
)

// Address is the decoded form of a store physical address such as
// rntbd://host:port/apps/<app>/services/<svc>/partitions/<p>/replicas/<r>p/
type Address struct {
	Tenant      string
	PartitionID string
	ReplicaID   string
	ReplicaRole string
}

// ParseAddress extracts what it can from a physical address. Unknown parts
// stay empty.
func ParseAddress(raw string) Address {
	var addr Address
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return addr
	}

	path := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		addr.Tenant = u.Hostname()
		path = u.Path
	}

	if m := partitionPattern.FindStringSubmatch(path); m != nil {
		addr.PartitionID = m[1]
	}
	if m := replicaPattern.FindStringSubmatch(path); m != nil {
		addr.ReplicaID, addr.ReplicaRole = splitReplica(m[1])
	}
	return addr
}

// splitReplica separates the trailing role marker: p for primary, s for
// secondary.
func splitReplica(id string) (string, string) {
	if len(id) < 2 {
		return id, ""
	}
	switch id[len(id)-1] {
	case 'p', 'P':
		return id[:len(id)-1], "primary"
	case 's', 'S':
		return id[:len(id)-1], "secondary"
	}
	return id, ""
}
