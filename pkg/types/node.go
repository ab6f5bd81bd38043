package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DNID identifies a data network by its composite (snssai, dnn) key.
type DNID struct {
	SNSSAI string `yaml:"snssai" json:"snssai"`
	DNN    string `yaml:"dnn" json:"dnn"`
}

func (id DNID) String() string {
	return id.SNSSAI + ":" + id.DNN
}

type NodeKind int

const (
	NodeName NodeKind = iota // gNB or UPF, referenced by name
	NodeDN                   // data network, referenced by (snssai, dnn)
)

// DataPathNode is one endpoint of a data path link.
type DataPathNode struct {
	Kind NodeKind
	Name string
	DN   DNID

	invalid string // decode problem, reported by validation
}

func NameNode(name string) DataPathNode {
	return DataPathNode{Kind: NodeName, Name: name}
}

func DNNode(snssai, dnn string) DataPathNode {
	return DataPathNode{Kind: NodeDN, DN: DNID{SNSSAI: snssai, DNN: dnn}}
}

func (n DataPathNode) IsDN() bool {
	return n.Kind == NodeDN
}

func (n DataPathNode) String() string {
	if n.Kind == NodeDN {
		return n.DN.String()
	}
	return n.Name
}

// Equal compares names by equality and data networks by both fields.
// A name is never equal to a data network.
func (n DataPathNode) Equal(o DataPathNode) bool {
	if n.Kind != o.Kind {
		return false
	}
	if n.Kind == NodeDN {
		return n.DN == o.DN
	}
	return n.Name == o.Name
}

func (n *DataPathNode) decode(v interface{}) {
	switch val := v.(type) {
	case string:
		*n = NameNode(val)
	case map[string]interface{}:
		snssai, _ := val["snssai"].(string)
		dnn, _ := val["dnn"].(string)
		*n = DNNode(snssai, dnn)
		if snssai == "" || dnn == "" {
			n.invalid = fmt.Sprintf("data network endpoint %v needs both snssai and dnn", val)
		}
	default:
		*n = DataPathNode{invalid: fmt.Sprintf("endpoint %v is neither a name nor {snssai, dnn}", v)}
	}
}

func (n DataPathNode) encode() interface{} {
	if n.Kind == NodeDN {
		return n.DN
	}
	return n.Name
}

func (n *DataPathNode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	n.decode(normalizeMap(v))
	return nil
}

func (n DataPathNode) MarshalYAML() (interface{}, error) {
	return n.encode(), nil
}

func (n DataPathNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.encode())
}

// DataPathLink is an undirected edge between two data path nodes.
type DataPathLink struct {
	A    DataPathNode
	B    DataPathNode
	Cost int

	invalid string
}

const DefaultLinkCost = 1

func NewDataPathLink(a, b DataPathNode, cost int) *DataPathLink {
	return &DataPathLink{A: a, B: b, Cost: cost}
}

// Has reports whether node is either endpoint of the link.
func (l *DataPathLink) Has(node DataPathNode) bool {
	return l.A.Equal(node) || l.B.Equal(node)
}

// Other returns the endpoint opposite to node.
// For a link connecting node to itself, node is returned.
func (l *DataPathLink) Other(node DataPathNode) (DataPathNode, bool) {
	switch {
	case l.A.Equal(node):
		return l.B, true
	case l.B.Equal(node):
		return l.A, true
	}
	return DataPathNode{}, false
}

func (l *DataPathLink) String() string {
	return fmt.Sprintf("%s--%s(%d)", l.A.String(), l.B.String(), l.Cost)
}

// UnmarshalYAML accepts [a, b], [a, b, cost] and {a, b, cost}.
func (l *DataPathLink) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	l.Cost = DefaultLinkCost
	switch val := normalizeMap(v).(type) {
	case []interface{}:
		if len(val) != 2 && len(val) != 3 {
			l.invalid = fmt.Sprintf("link %v must have 2 or 3 elements", val)
			return nil
		}
		l.A.decode(normalizeMap(val[0]))
		l.B.decode(normalizeMap(val[1]))
		if len(val) == 3 {
			l.decodeCost(val[2])
		}
	case map[string]interface{}:
		l.A.decode(normalizeMap(val["a"]))
		l.B.decode(normalizeMap(val["b"]))
		if c, ok := val["cost"]; ok {
			l.decodeCost(c)
		}
	default:
		l.invalid = fmt.Sprintf("link %v is neither a list nor a mapping", v)
	}
	return nil
}

func (l *DataPathLink) decodeCost(v interface{}) {
	switch c := v.(type) {
	case int:
		l.Cost = c
	case int64:
		l.Cost = int(c)
	case uint64:
		l.Cost = int(c)
	case float64:
		l.Cost = int(c)
		if float64(l.Cost) != c {
			l.invalid = fmt.Sprintf("link cost %v is not an integer", c)
		}
	default:
		l.invalid = fmt.Sprintf("link cost %v is not a number", v)
	}
}

func (l DataPathLink) MarshalYAML() (interface{}, error) {
	return []interface{}{l.A.encode(), l.B.encode(), l.Cost}, nil
}

func (l DataPathLink) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{l.A.encode(), l.B.encode(), l.Cost})
}

// normalizeMap converts yaml mappings with non-string keys into map[string]interface{}.
func normalizeMap(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[strings.TrimSpace(fmt.Sprint(k))] = item
		}
		return m
	case map[string]interface{}:
		return val
	}
	return v
}
