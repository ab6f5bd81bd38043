package visual

import (
	"bytes"
	"encoding/json"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
	"github.com/cpflat/nrtopo/pkg/model"
	"github.com/cpflat/nrtopo/pkg/types"
)

type TopologyData struct {
	Network  *types.Network `json:"network" yaml:"network"`
	UPFs     []*UPFData     `json:"upfs" yaml:"upfs"`
	Networks []*NetworkData `json:"networks,omitempty" yaml:"networks,omitempty"`
}

type UPFData struct {
	Name string      `json:"name" yaml:"name"`
	N3   []*PeerData `json:"n3" yaml:"n3"`
	N9   []*PeerData `json:"n9" yaml:"n9"`
	N6   []*PeerData `json:"n6" yaml:"n6"`
}

type PeerData struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"` // data network type
	Cost int    `json:"cost" yaml:"cost"`
}

type NetworkData struct {
	Name  string                `json:"name" yaml:"name"`
	CIDR  string                `json:"cidr" yaml:"cidr"`
	Hosts []ipalloc.NetifRecord `json:"hosts" yaml:"hosts"`
}

// GetData collects the derived views of net. Address data is included
// when alloc is given.
func GetData(net *types.Network, alloc *ipalloc.Allocator) (*TopologyData, error) {
	td := &TopologyData{Network: net, UPFs: []*UPFData{}}
	for _, upf := range net.UPFs {
		peers, err := model.GatherUPFPeers(net, upf)
		if err != nil {
			return nil, err
		}
		ud := &UPFData{Name: upf.Name, N3: []*PeerData{}, N9: []*PeerData{}, N6: []*PeerData{}}
		for _, p := range peers.N3 {
			ud.N3 = append(ud.N3, &PeerData{Name: p.GNB.Name, Cost: p.Cost})
		}
		for _, p := range peers.N9 {
			ud.N9 = append(ud.N9, &PeerData{Name: p.UPF.Name, Cost: p.Cost})
		}
		for _, typ := range types.AllDNTypes() {
			for _, p := range peers.N6(typ) {
				ud.N6 = append(ud.N6, &PeerData{Name: p.DN.ID().String(), Type: string(typ), Cost: p.Cost})
			}
		}
		td.UPFs = append(td.UPFs, ud)
	}

	if alloc != nil {
		for _, rec := range alloc.Networks() {
			td.Networks = append(td.Networks, &NetworkData{
				Name:  rec.Name,
				CIDR:  rec.CIDR,
				Hosts: alloc.Netifs(rec.Name),
			})
		}
	}
	return td, nil
}

func GetDataJSON(net *types.Network, alloc *ipalloc.Allocator) ([]byte, error) {
	td, err := GetData(net, alloc)
	if err != nil {
		return nil, err
	}
	js, err := json.Marshal(td)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = json.Indent(&buf, js, "", "  ")
	if err != nil {
		return nil, err
	}
	js = buf.Bytes()
	return js, err
}
