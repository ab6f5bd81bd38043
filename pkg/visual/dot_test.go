package visual

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/awalterschulze/gographviz"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
	"github.com/cpflat/nrtopo/pkg/model"
	"github.com/cpflat/nrtopo/pkg/types"
)

func testNetwork() *types.Network {
	return &types.Network{
		GNBIDLength: 24,
		GNBs:        []*types.GNB{{Name: "gnb0"}},
		UPFs:        []*types.UPF{{Name: "upf1"}, {Name: "upf2"}},
		DataNetworks: []*types.DataNetwork{
			{SNSSAI: "01", DNN: "internet", Type: types.DNTypeIPv4, Subnet: "10.1.0.0/16"},
			{SNSSAI: "02", DNN: "lan", Type: types.DNTypeEthernet},
		},
		DataPaths: []*types.DataPathLink{
			types.NewDataPathLink(types.NameNode("gnb0"), types.NameNode("upf1"), 2),
			types.NewDataPathLink(types.NameNode("upf1"), types.NameNode("upf2"), 1),
			types.NewDataPathLink(types.NameNode("upf2"), types.DNNode("01", "internet"), 3),
			types.NewDataPathLink(types.NameNode("upf2"), types.DNNode("02", "lan"), 1),
		},
	}
}

func TestAbbreviateIPAddress(t *testing.T) {
	tests := []struct {
		addr, cidr, want string
	}{
		{"172.25.192.3", "172.25.192.0/24", ".3"},
		{"10.0.0.3", "10.0.0.0/16", "10.0.0.3"},
		{"fd00::1", "fd00::/64", "fd00::1"},
	}
	for _, tt := range tests {
		if got := abbreviateIPAddress(tt.addr, tt.cidr); got != tt.want {
			t.Errorf("abbreviateIPAddress(%v, %v) = %v, want %v", tt.addr, tt.cidr, got, tt.want)
		}
	}
}

func TestTopologyToDot(t *testing.T) {
	net := testNetwork()
	out, err := TopologyToDot(net, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"graph G", "gnb0", "upf1", "upf2", "dn_01_internet", "\"N3 (2)\"", "\"N9 (1)\"", "\"N6 (3)\""} {
		if !strings.Contains(out, s) {
			t.Errorf("dot output does not contain %s:\n%s", s, out)
		}
	}
	if strings.Contains(out, "taillabel") {
		t.Errorf("addresses rendered without allocation:\n%s", out)
	}
}

func TestTopologyToDotParses(t *testing.T) {
	out, err := TopologyToDot(testNetwork(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ast, err := gographviz.ParseString(out)
	if err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	g, err := gographviz.NewAnalysedGraph(ast)
	if err != nil {
		t.Fatal(err)
	}

	nodes := []string{}
	for _, n := range g.Nodes.Nodes {
		nodes = append(nodes, n.Name)
	}
	sort.Strings(nodes)
	want := []string{"dn_01_internet", "dn_02_lan", "gnb0", "upf1", "upf2"}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("nodes = %v, want %v", nodes, want)
	}

	edges := []string{}
	for _, e := range g.Edges.Edges {
		if e.SrcPort != "" || e.DstPort != "" {
			t.Errorf("edge %s -- %s has ports %q %q", e.Src, e.Dst, e.SrcPort, e.DstPort)
		}
		edges = append(edges, e.Src+"--"+e.Dst)
	}
	want = []string{"gnb0--upf1", "upf1--upf2", "upf2--dn_01_internet", "upf2--dn_02_lan"}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}

func TestTopologyToDotAddresses(t *testing.T) {
	net := testNetwork()
	alloc, err := ipalloc.New(ipalloc.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := model.AssignAddresses(net, alloc); err != nil {
		t.Fatal(err)
	}
	out, err := TopologyToDot(net, alloc)
	if err != nil {
		t.Fatal(err)
	}
	// n2 and n4 come first, n3 is the third block
	for _, s := range []string{"172.25.194.0/24", "taillabel", "headlabel"} {
		if !strings.Contains(out, s) {
			t.Errorf("dot output does not contain %s:\n%s", s, out)
		}
	}
}

func TestTopologyToDotInvalidLink(t *testing.T) {
	net := testNetwork()
	net.DataPaths = append(net.DataPaths, types.NewDataPathLink(types.NameNode("gnb0"), types.NameNode("gnb9"), 1))
	if _, err := TopologyToDot(net, nil); err == nil {
		t.Errorf("invalid link accepted")
	}
}
