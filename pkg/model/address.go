package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
	"github.com/cpflat/nrtopo/pkg/logger"
	"github.com/cpflat/nrtopo/pkg/types"
)

// logical networks of the address plan
const (
	NetworkN2 = "n2" // AMF and gNB control plane
	NetworkN4 = "n4" // SMF and UPF control plane
	NetworkN3 = "n3"
	NetworkN9 = "n9"
	NetworkUE = "ue" // one address per UE, for simulators running a container per UE

	n6NetworkPrefix = "n6"
	DNHost          = "dn" // data network side of an N6 network
)

// N6Network names the N6 network of a data network.
func N6Network(id types.DNID) string {
	return strings.Join([]string{n6NetworkPrefix, id.SNSSAI, id.DNN}, "_")
}

// LinkNetwork names the logical network a data path link belongs to,
// along with the interface type ("N3", "N9" or "N6").
func LinkNetwork(net *types.Network, link *types.DataPathLink) (string, string, error) {
	var dn *types.DataPathNode
	names := []string{}
	for _, node := range []types.DataPathNode{link.A, link.B} {
		node := node
		if node.IsDN() {
			dn = &node
		} else {
			names = append(names, node.Name)
		}
	}

	isGNB := func(name string) bool {
		_, ok := net.FindGNB(name)
		return ok
	}
	isUPF := func(name string) bool {
		_, ok := net.FindUPF(name)
		return ok
	}

	switch {
	case dn != nil && len(names) == 1 && isUPF(names[0]):
		if _, ok := net.FindDN(dn.DN.SNSSAI, dn.DN.DNN); !ok {
			return "", "", types.NewTopologyError("link %s refers to unknown data network %s", link, dn.DN)
		}
		return N6Network(dn.DN), "N6", nil
	case len(names) == 2 && isUPF(names[0]) && isUPF(names[1]):
		return NetworkN9, "N9", nil
	case len(names) == 2 && (isGNB(names[0]) && isUPF(names[1]) || isUPF(names[0]) && isGNB(names[1])):
		return NetworkN3, "N3", nil
	}
	return "", "", types.NewTopologyError("link %s does not connect a UPF to a gNB, UPF or data network", link)
}

// hasIPv4 reports whether an IPv4 network runs over link.
// N6 links to IPv6 or Ethernet data networks carry none.
func hasIPv4(net *types.Network, link *types.DataPathLink) bool {
	for _, node := range []types.DataPathNode{link.A, link.B} {
		if !node.IsDN() {
			continue
		}
		if dn, ok := net.FindDN(node.DN.SNSSAI, node.DN.DNN); ok && dn.Type != "" && dn.Type != types.DNTypeIPv4 {
			return false
		}
	}
	return true
}

// AssignAddresses allocates an address for every network function interface
// of net. Networks and hosts are visited in a fixed order so that the same
// topology always yields the same addresses.
func AssignAddresses(net *types.Network, alloc *ipalloc.Allocator) error {
	for _, amf := range net.ListAMFs() {
		if _, err := alloc.AllocNetif(NetworkN2, amf.Name); err != nil {
			return err
		}
	}
	for _, gnb := range net.ListGNBs() {
		if _, err := alloc.AllocNetif(NetworkN2, gnb.Name); err != nil {
			return err
		}
	}
	for _, smf := range net.ListSMFs() {
		if _, err := alloc.AllocNetif(NetworkN4, smf.Name); err != nil {
			return err
		}
	}
	for _, upf := range net.UPFs {
		if _, err := alloc.AllocNetif(NetworkN4, upf.Name); err != nil {
			return err
		}
	}

	// user plane, one host per link endpoint
	for _, link := range net.DataPaths {
		network, _, err := LinkNetwork(net, link)
		if err != nil {
			return err
		}
		if !hasIPv4(net, link) {
			continue
		}
		for _, node := range []types.DataPathNode{link.A, link.B} {
			host := node.Name
			if node.IsDN() {
				host = DNHost
			}
			if _, err := alloc.AllocNetif(network, host); err != nil {
				return err
			}
		}
	}

	for _, sub := range net.ListSubscribers(false, nil) {
		count := sub.Count
		if count < 1 {
			count = 1
		}
		if _, err := alloc.AllocNetifs(NetworkUE, sub.SUPI, count); err != nil {
			return errors.Wrapf(err, "subscriber %s", sub.SUPI)
		}
	}

	logger.AllocLog.Infof("assigned addresses on %d networks", len(alloc.Networks()))
	return nil
}

// UEHost returns the allocator key of the i-th UE of a subscriber record.
func UEHost(sub types.Subscriber, i int) string {
	if i == 0 {
		return sub.SUPI
	}
	return fmt.Sprintf("%s+%d", sub.SUPI, i)
}
