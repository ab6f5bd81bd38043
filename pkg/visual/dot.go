package visual

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
	"github.com/cpflat/nrtopo/pkg/model"
	"github.com/cpflat/nrtopo/pkg/types"
)

const KEY_NODE_LABEL = "label"
const KEY_NODE_SHAPE = "shape"
const KEY_NODE_STYLE = "style"
const KEY_EDGE_LABEL = "label"
const KEY_EDGE_HEADLABEL = "headlabel"
const KEY_EDGE_TAILLABEL = "taillabel"

const graphName = "G"

func abbreviateIPAddress(addr string, cidr string) string {
	ip, err := netip.ParseAddr(addr)
	if err != nil || !ip.Is4() {
		return addr
	}
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil || prefix.Bits() < 24 {
		return addr
	}
	return "." + strings.Split(addr, ".")[3]
}

// dnNodeName is a plain identifier, as a colon would be read as a port.
func dnNodeName(id types.DNID) string {
	return strings.Join([]string{"dn", id.SNSSAI, id.DNN}, "_")
}

func nodeName(node types.DataPathNode) string {
	if node.IsDN() {
		return dnNodeName(node.DN)
	}
	return node.Name
}

func networkCIDR(alloc *ipalloc.Allocator, network string) string {
	for _, rec := range alloc.Networks() {
		if rec.Name == network {
			return rec.CIDR
		}
	}
	return ""
}

func endpointLabel(alloc *ipalloc.Allocator, network string, cidr string, node types.DataPathNode) string {
	host := node.Name
	if node.IsDN() {
		host = model.DNHost
	}
	addr, ok := alloc.LookupNetif(network, host)
	if !ok {
		return ""
	}
	return abbreviateIPAddress(addr, cidr)
}

// TopologyToDot renders the data path graph. Edges are labeled with their
// interface type and cost; when alloc is given, with the network block and
// the endpoint addresses too.
func TopologyToDot(net *types.Network, alloc *ipalloc.Allocator) (string, error) {
	g := gographviz.NewEscape()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(false); err != nil {
		return "", err
	}

	for _, gnb := range net.ListGNBs() {
		attrs := map[string]string{
			KEY_NODE_SHAPE: "box",
			KEY_NODE_LABEL: gnb.Name + "\\nnci: " + gnb.NCI,
		}
		if err := g.AddNode(graphName, gnb.Name, attrs); err != nil {
			return "", err
		}
	}
	for _, upf := range net.UPFs {
		attrs := map[string]string{
			KEY_NODE_SHAPE: "ellipse",
			KEY_NODE_LABEL: upf.Name,
		}
		if err := g.AddNode(graphName, upf.Name, attrs); err != nil {
			return "", err
		}
	}
	for _, dn := range net.ListDataNetworks() {
		label := dn.DNN + "\\n" + dn.SNSSAI + " " + string(dn.Type)
		if dn.Subnet != "" {
			label += "\\n" + dn.Subnet
		}
		attrs := map[string]string{
			KEY_NODE_SHAPE: "note",
			KEY_NODE_LABEL: label,
		}
		if dn.Type != types.DNTypeIPv4 {
			attrs[KEY_NODE_STYLE] = "dashed"
		}
		if err := g.AddNode(graphName, dnNodeName(dn.ID()), attrs); err != nil {
			return "", err
		}
	}

	for _, link := range net.DataPaths {
		network, iftype, err := model.LinkNetwork(net, link)
		if err != nil {
			return "", err
		}
		attrs := map[string]string{
			KEY_EDGE_LABEL: iftype + " (" + strconv.Itoa(link.Cost) + ")",
		}
		if alloc != nil {
			if cidr := networkCIDR(alloc, network); cidr != "" {
				attrs[KEY_EDGE_LABEL] = attrs[KEY_EDGE_LABEL] + "\\n" + cidr
				if l := endpointLabel(alloc, network, cidr, link.A); l != "" {
					attrs[KEY_EDGE_TAILLABEL] = l
				}
				if l := endpointLabel(alloc, network, cidr, link.B); l != "" {
					attrs[KEY_EDGE_HEADLABEL] = l
				}
			}
		}
		if err := g.AddEdge(nodeName(link.A), nodeName(link.B), false, attrs); err != nil {
			return "", err
		}
	}

	return g.String(), nil
}
