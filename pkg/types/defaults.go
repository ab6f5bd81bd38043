package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cpflat/nrtopo/pkg/logger"
)

// Defaults of network functions are pure functions of the array index.

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

func gnbDefaultName(i int, gnb *GNB) string {
	if gnb.Name != "" {
		return gnb.Name
	}
	return fmt.Sprintf("gnb%d", i)
}

func amfDefaultName(i int, amf *AMF) string {
	if amf.Name != "" {
		return amf.Name
	}
	return fmt.Sprintf("amf%d", i)
}

func smfDefaultName(i int, smf *SMF) string {
	if smf.Name != "" {
		return smf.Name
	}
	return fmt.Sprintf("smf%d", i)
}

func (net *Network) gnbWithDefaults(i int, gnb *GNB) GNB {
	g := *gnb
	g.Name = gnbDefaultName(i, gnb)
	nci, err := ParseNCI(g.NCI)
	if err != nil {
		nci = DefaultNCI(i, net.GNBIDLength)
	}
	g.NCI = FormatNCI(nci)
	g.GNBID, g.CellID = SplitNCI(nci, net.GNBIDLength)
	return g
}

func (net *Network) amfWithDefaults(i int, amf *AMF) AMF {
	a := AMF{Name: amfDefaultName(i, amf)}
	if len(amf.AMFI) == 3 {
		a.AMFI = append([]int{}, amf.AMFI...)
	} else {
		a.AMFI = []int{1, 0, i}
	}
	if len(amf.NSSAI) > 0 {
		a.NSSAI = append([]string{}, amf.NSSAI...)
	} else {
		a.NSSAI = net.ListNSSAI()
	}
	return a
}

func (net *Network) smfWithDefaults(i int, smf *SMF) SMF {
	s := SMF{Name: smfDefaultName(i, smf)}
	if len(smf.NSSAI) > 0 {
		s.NSSAI = append([]string{}, smf.NSSAI...)
	} else {
		s.NSSAI = net.ListNSSAI()
	}
	return s
}

func dnWithDefaults(dn *DataNetwork) {
	if dn.Type == "" {
		dn.Type = DNTypeIPv4
	}
	if dn.FiveQI == 0 {
		dn.FiveQI = DefaultFiveQI
	}
	if dn.FiveQIPriorityLevel == 0 {
		dn.FiveQIPriorityLevel = DefaultFiveQIPriorityLevel
	}
	if dn.ARPLevel == 0 {
		dn.ARPLevel = DefaultARPLevel
	}
	if dn.AMBR == nil {
		dn.AMBR = &AMBR{Uplink: DefaultAMBRMbps, Downlink: DefaultAMBRMbps}
	}
}

// defaultSubscribedNSSAI groups every data network by S-NSSAI in declaration order.
func (net *Network) defaultSubscribedNSSAI() []*SubscriberSNSSAI {
	list := []*SubscriberSNSSAI{}
	bySNSSAI := map[string]*SubscriberSNSSAI{}
	for _, dn := range net.DataNetworks {
		entry, ok := bySNSSAI[dn.SNSSAI]
		if !ok {
			entry = &SubscriberSNSSAI{SNSSAI: dn.SNSSAI}
			bySNSSAI[dn.SNSSAI] = entry
			list = append(list, entry)
		}
		entry.DNNs = append(entry.DNNs, dn.DNN)
	}
	return list
}

func randomKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// normalize fills every optional field once, so that consumers never see
// an unset value. It runs after Validate.
func (net *Network) normalize() error {
	for _, dn := range net.DataNetworks {
		dnWithDefaults(dn)
	}

	for i, gnb := range net.GNBs {
		g := net.gnbWithDefaults(i, gnb)
		*gnb = g
	}

	if len(net.AMFs) == 0 {
		net.AMFs = []*AMF{{Name: "amf"}}
	}
	for i, amf := range net.AMFs {
		a := net.amfWithDefaults(i, amf)
		*amf = a
	}
	if len(net.SMFs) == 0 {
		net.SMFs = []*SMF{{Name: "smf"}}
	}
	for i, smf := range net.SMFs {
		s := net.smfWithDefaults(i, smf)
		*smf = s
	}

	if net.SubscriberDefault == nil {
		net.SubscriberDefault = &SubscriberDefault{}
	}
	allGNBs := make([]string, 0, len(net.GNBs))
	for _, gnb := range net.GNBs {
		allGNBs = append(allGNBs, gnb.Name)
	}
	for _, sub := range net.Subscribers {
		if sub.Count == 0 {
			sub.Count = 1
		}
		var err error
		if sub.K == "" {
			sub.K = net.SubscriberDefault.K
		}
		if sub.K == "" {
			if sub.K, err = randomKey(); err != nil {
				return err
			}
			logger.CfgLog.Debugf("subscriber %s: random K generated", sub.SUPI)
		}
		if sub.OPC == "" {
			sub.OPC = net.SubscriberDefault.OPC
		}
		if sub.OPC == "" {
			if sub.OPC, err = randomKey(); err != nil {
				return err
			}
			logger.CfgLog.Debugf("subscriber %s: random OPc generated", sub.SUPI)
		}
		if len(sub.SubscribedNSSAI) == 0 {
			sub.SubscribedNSSAI = net.defaultSubscribedNSSAI()
		}
		if len(sub.GNBs) == 0 {
			sub.GNBs = append([]string{}, allGNBs...)
		}
		if sub.AMBR == nil {
			sub.AMBR = net.defaultSubscriberAMBR(sub)
		}
	}
	return nil
}

// defaultSubscriberAMBR takes the highest uplink and downlink among the subscribed data networks.
func (net *Network) defaultSubscriberAMBR(sub *Subscriber) *AMBR {
	ambr := &AMBR{}
	for _, id := range flattenNSSAI(sub.SubscribedNSSAI) {
		dn, ok := net.FindDN(id.SNSSAI, id.DNN)
		if !ok || dn.AMBR == nil {
			continue
		}
		if dn.AMBR.Uplink > ambr.Uplink {
			ambr.Uplink = dn.AMBR.Uplink
		}
		if dn.AMBR.Downlink > ambr.Downlink {
			ambr.Downlink = dn.AMBR.Downlink
		}
	}
	if ambr.Uplink == 0 {
		ambr.Uplink = DefaultAMBRMbps
	}
	if ambr.Downlink == 0 {
		ambr.Downlink = DefaultAMBRMbps
	}
	return ambr
}

// ListNSSAI returns every distinct S-NSSAI of the data networks in declaration order.
func (net *Network) ListNSSAI() []string {
	seen := mapset.NewSet[string]()
	list := []string{}
	for _, dn := range net.DataNetworks {
		if !seen.Contains(dn.SNSSAI) {
			seen.Add(dn.SNSSAI)
			list = append(list, dn.SNSSAI)
		}
	}
	return list
}

func (net *Network) ListGNBs() []GNB {
	gnbs := make([]GNB, 0, len(net.GNBs))
	for i, gnb := range net.GNBs {
		gnbs = append(gnbs, net.gnbWithDefaults(i, gnb))
	}
	return gnbs
}

func (net *Network) ListAMFs() []AMF {
	if len(net.AMFs) == 0 {
		return []AMF{net.amfWithDefaults(0, &AMF{Name: "amf"})}
	}
	amfs := make([]AMF, 0, len(net.AMFs))
	for i, amf := range net.AMFs {
		amfs = append(amfs, net.amfWithDefaults(i, amf))
	}
	return amfs
}

func (net *Network) ListSMFs() []SMF {
	if len(net.SMFs) == 0 {
		return []SMF{net.smfWithDefaults(0, &SMF{Name: "smf"})}
	}
	smfs := make([]SMF, 0, len(net.SMFs))
	for i, smf := range net.SMFs {
		smfs = append(smfs, net.smfWithDefaults(i, smf))
	}
	return smfs
}

func (net *Network) ListDataNetworks() []DataNetwork {
	dns := make([]DataNetwork, 0, len(net.DataNetworks))
	for _, dn := range net.DataNetworks {
		d := *dn
		dnWithDefaults(&d)
		dns = append(dns, d)
	}
	return dns
}

func (net *Network) FindGNB(name string) (*GNB, bool) {
	for i, gnb := range net.GNBs {
		if gnbDefaultName(i, gnb) == name {
			return gnb, true
		}
	}
	return nil, false
}

func (net *Network) FindUPF(name string) (*UPF, bool) {
	for _, upf := range net.UPFs {
		if upf.Name == name {
			return upf, true
		}
	}
	return nil, false
}

func (net *Network) FindDN(snssai string, dnn string) (*DataNetwork, bool) {
	if i := net.FindDNIndex(snssai, dnn); i >= 0 {
		return net.DataNetworks[i], true
	}
	return nil, false
}

// FindDNIndex returns the position of a data network in DataNetworks, or -1.
func (net *Network) FindDNIndex(snssai string, dnn string) int {
	for i, dn := range net.DataNetworks {
		if dn.SNSSAI == snssai && dn.DNN == dnn {
			return i
		}
	}
	return -1
}
