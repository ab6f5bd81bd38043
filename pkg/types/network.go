package types

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/cpflat/nrtopo/pkg/logger"
)

type DNType string

const (
	DNTypeIPv4     DNType = "IPv4"
	DNTypeIPv6     DNType = "IPv6"
	DNTypeEthernet DNType = "Ethernet"
)

func AllDNTypes() []DNType {
	return []DNType{DNTypeIPv4, DNTypeIPv6, DNTypeEthernet}
}

// QoS defaults of a data network
const DefaultFiveQI int = 9
const DefaultFiveQIPriorityLevel int = 90
const DefaultARPLevel int = 8
const DefaultAMBRMbps int = 1000

// NCI is 36 bits, written as 9 hex digits
const NCIBits int = 36

// network definition elements

type Network struct {
	PLMN              string             `yaml:"plmn" json:"plmn"`
	GNBIDLength       int                `yaml:"gnbIdLength" json:"gnbIdLength"`
	TAC               string             `yaml:"tac" json:"tac"`
	SubscriberDefault *SubscriberDefault `yaml:"subscriberDefault,omitempty" json:"subscriberDefault,omitempty"`
	Subscribers       []*Subscriber      `yaml:"subscribers" json:"subscribers"`
	GNBs              []*GNB             `yaml:"gnbs" json:"gnbs"`
	AMFs              []*AMF             `yaml:"amfs,omitempty" json:"amfs,omitempty"`
	SMFs              []*SMF             `yaml:"smfs,omitempty" json:"smfs,omitempty"`
	UPFs              []*UPF             `yaml:"upfs" json:"upfs"`
	DataNetworks      []*DataNetwork     `yaml:"dataNetworks" json:"dataNetworks"`
	DataPaths         []*DataPathLink    `yaml:"dataPaths" json:"dataPaths"`
}

type SubscriberDefault struct {
	K   string `yaml:"k,omitempty" json:"k,omitempty"`
	OPC string `yaml:"opc,omitempty" json:"opc,omitempty"`
}

type GNB struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	NCI  string `yaml:"nci,omitempty" json:"nci,omitempty"`

	// derived by ListGNBs
	GNBID  uint64 `yaml:"-" json:"-"`
	CellID uint64 `yaml:"-" json:"-"`
}

type AMF struct {
	Name  string   `yaml:"name,omitempty" json:"name,omitempty"`
	AMFI  []int    `yaml:"amfi,flow,omitempty" json:"amfi,omitempty"` // region, set, pointer
	NSSAI []string `yaml:"nssai,flow,omitempty" json:"nssai,omitempty"`
}

type SMF struct {
	Name  string   `yaml:"name,omitempty" json:"name,omitempty"`
	NSSAI []string `yaml:"nssai,flow,omitempty" json:"nssai,omitempty"`
}

type UPF struct {
	Name string `yaml:"name" json:"name"`
}

// AMBR in Mbps.
type AMBR struct {
	Uplink   int `yaml:"uplink" json:"uplink"`
	Downlink int `yaml:"downlink" json:"downlink"`
}

type DataNetwork struct {
	SNSSAI              string `yaml:"snssai" json:"snssai"`
	DNN                 string `yaml:"dnn" json:"dnn"`
	Type                DNType `yaml:"type,omitempty" json:"type,omitempty"`
	Subnet              string `yaml:"subnet,omitempty" json:"subnet,omitempty"`
	FiveQI              int    `yaml:"fiveQi,omitempty" json:"fiveQi,omitempty"`
	FiveQIPriorityLevel int    `yaml:"fiveQiPriorityLevel,omitempty" json:"fiveQiPriorityLevel,omitempty"`
	ARPLevel            int    `yaml:"arpLevel,omitempty" json:"arpLevel,omitempty"`
	AMBR                *AMBR  `yaml:"ambr,omitempty" json:"ambr,omitempty"`
}

func (dn *DataNetwork) ID() DNID {
	return DNID{SNSSAI: dn.SNSSAI, DNN: dn.DNN}
}

// SubscriberSNSSAI is one entry of a subscribed or requested NSSAI.
type SubscriberSNSSAI struct {
	SNSSAI string   `yaml:"snssai" json:"snssai"`
	DNNs   []string `yaml:"dnns,flow" json:"dnns"`
}

type Subscriber struct {
	SUPI            string              `yaml:"supi" json:"supi"`
	Count           int                 `yaml:"count,omitempty" json:"count,omitempty"`
	K               string              `yaml:"k,omitempty" json:"k,omitempty"`
	OPC             string              `yaml:"opc,omitempty" json:"opc,omitempty"`
	SubscribedNSSAI []*SubscriberSNSSAI `yaml:"subscribedNSSAI,omitempty" json:"subscribedNSSAI,omitempty"`
	RequestedNSSAI  []*SubscriberSNSSAI `yaml:"requestedNSSAI,omitempty" json:"requestedNSSAI,omitempty"`
	AMBR            *AMBR               `yaml:"ambr,omitempty" json:"ambr,omitempty"`
	GNBs            []string            `yaml:"gnbs,flow,omitempty" json:"gnbs,omitempty"`

	// derived by ListSubscribers
	SubscribedDN []DNID `yaml:"-" json:"subscribedDN,omitempty"`
	RequestedDN  []DNID `yaml:"-" json:"requestedDN,omitempty"`
}

// defaultCounts sets count 1 on subscribers that omit it, leaving an
// explicit count of zero to validation.
func (net *Network) defaultCounts(data []byte) error {
	raw := struct {
		Subscribers []struct {
			Count *int `yaml:"count"`
		} `yaml:"subscribers"`
	}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode subscriber counts")
	}
	for i, sub := range net.Subscribers {
		if sub != nil && i < len(raw.Subscribers) && raw.Subscribers[i].Count == nil {
			sub.Count = 1
		}
	}
	return nil
}

// ParseNetwork decodes a YAML or JSON network definition,
// validates it and returns the normalized network.
func ParseNetwork(data []byte) (*Network, error) {
	net := Network{}
	if err := yaml.Unmarshal(data, &net); err != nil {
		return nil, errors.Wrap(err, "decode network definition")
	}
	if err := net.defaultCounts(data); err != nil {
		return nil, err
	}
	net.canonicalize()
	if err := net.Validate(); err != nil {
		return nil, err
	}
	if err := net.normalize(); err != nil {
		return nil, err
	}
	logger.TopoLog.Infof("network %s loaded: %d gNB, %d UPF, %d DN, %d link, %d subscriber record",
		net.PLMN, len(net.GNBs), len(net.UPFs), len(net.DataNetworks), len(net.DataPaths), len(net.Subscribers))
	return &net, nil
}

func LoadNetwork(path string) (*Network, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	net, err := ParseNetwork(bytes)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			return nil, err
		}
		return nil, errors.Wrapf(err, "load %s", path)
	}
	logger.CfgLog.Debugf("network definition read from %s", path)
	return net, nil
}
