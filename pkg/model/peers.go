package model

import (
	"github.com/cpflat/nrtopo/pkg/logger"
	"github.com/cpflat/nrtopo/pkg/types"
)

// A DataPathPeer is the opposite end of one data path link.
// Duplicated links yield one peer each.
type DataPathPeer struct {
	Node types.DataPathNode
	Cost int
	Link int // index in Network.DataPaths
}

type PeerGNB struct {
	GNB  types.GNB
	Cost int
}

type PeerUPF struct {
	UPF  types.UPF
	Cost int
}

type PeerDN struct {
	DN    types.DataNetwork
	Index int // index in Network.DataNetworks
	Cost  int
}

// UPFPeers classifies the peers of a UPF by logical interface.
type UPFPeers struct {
	N3         []PeerGNB
	N9         []PeerUPF
	N6Ethernet []PeerDN
	N6IPv4     []PeerDN
	N6IPv6     []PeerDN
}

// N6 returns the data network peers of the given type.
func (p *UPFPeers) N6(typ types.DNType) []PeerDN {
	switch typ {
	case types.DNTypeEthernet:
		return p.N6Ethernet
	case types.DNTypeIPv6:
		return p.N6IPv6
	default:
		return p.N6IPv4
	}
}

func (p *UPFPeers) addN6(peer PeerDN) {
	switch peer.DN.Type {
	case types.DNTypeEthernet:
		p.N6Ethernet = append(p.N6Ethernet, peer)
	case types.DNTypeIPv6:
		p.N6IPv6 = append(p.N6IPv6, peer)
	default:
		p.N6IPv4 = append(p.N6IPv4, peer)
	}
}

func EqualDataPathNode(a, b types.DataPathNode) bool {
	return a.Equal(b)
}

// ListDataPathPeers scans every link and returns the opposite endpoint of
// each link touching node, regardless of the direction it was written in.
func ListDataPathPeers(net *types.Network, node types.DataPathNode) []DataPathPeer {
	peers := []DataPathPeer{}
	for i, link := range net.DataPaths {
		other, ok := link.Other(node)
		if !ok {
			continue
		}
		peers = append(peers, DataPathPeer{Node: other, Cost: link.Cost, Link: i})
	}
	return peers
}

// GatherUPFPeers classifies the data path peers of upf into N3 (gNB),
// N9 (UPF) and N6 (data network, by type). A peer that cannot be resolved
// is a *types.TopologyError.
func GatherUPFPeers(net *types.Network, upf *types.UPF) (*UPFPeers, error) {
	gnbs := map[string]types.GNB{}
	for _, gnb := range net.ListGNBs() {
		gnbs[gnb.Name] = gnb
	}
	dns := net.ListDataNetworks()

	peers := &UPFPeers{}
	self := types.NameNode(upf.Name)
	for _, peer := range ListDataPathPeers(net, self) {
		node := peer.Node
		if node.IsDN() {
			idx := net.FindDNIndex(node.DN.SNSSAI, node.DN.DNN)
			if idx < 0 {
				return nil, types.NewTopologyError("UPF %s: data path link %d refers to unknown data network %s",
					upf.Name, peer.Link, node.DN)
			}
			peers.addN6(PeerDN{DN: dns[idx], Index: idx, Cost: peer.Cost})
			continue
		}
		if gnb, ok := gnbs[node.Name]; ok {
			peers.N3 = append(peers.N3, PeerGNB{GNB: gnb, Cost: peer.Cost})
		} else if other, ok := net.FindUPF(node.Name); ok {
			peers.N9 = append(peers.N9, PeerUPF{UPF: *other, Cost: peer.Cost})
		} else {
			return nil, types.NewTopologyError("UPF %s: data path link %d refers to unknown node %s",
				upf.Name, peer.Link, node.Name)
		}
	}
	logger.PeerLog.Debugf("UPF %s: N3=%d N9=%d N6=%d/%d/%d", upf.Name,
		len(peers.N3), len(peers.N9), len(peers.N6IPv4), len(peers.N6IPv6), len(peers.N6Ethernet))
	return peers, nil
}

// GatherGNBPeers returns the UPFs a gNB reaches over N3.
func GatherGNBPeers(net *types.Network, gnb *types.GNB) ([]PeerUPF, error) {
	peers := []PeerUPF{}
	for _, peer := range ListDataPathPeers(net, types.NameNode(gnb.Name)) {
		if peer.Node.IsDN() {
			return nil, types.NewTopologyError("gNB %s: data path link %d connects directly to data network %s",
				gnb.Name, peer.Link, peer.Node.DN)
		}
		upf, ok := net.FindUPF(peer.Node.Name)
		if !ok {
			return nil, types.NewTopologyError("gNB %s: data path link %d refers to unknown UPF %s",
				gnb.Name, peer.Link, peer.Node.Name)
		}
		peers = append(peers, PeerUPF{UPF: *upf, Cost: peer.Cost})
	}
	return peers, nil
}

// GatherAllUPFPeers resolves the peers of every UPF, keyed by UPF name.
func GatherAllUPFPeers(net *types.Network) (map[string]*UPFPeers, error) {
	all := make(map[string]*UPFPeers, len(net.UPFs))
	for _, upf := range net.UPFs {
		peers, err := GatherUPFPeers(net, upf)
		if err != nil {
			return nil, err
		}
		all[upf.Name] = peers
	}
	return all, nil
}
