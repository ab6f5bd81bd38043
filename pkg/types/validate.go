package types

import (
	"net/netip"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// canonicalize lower-cases hex encoded fields so that comparisons are exact.
func (net *Network) canonicalize() {
	net.TAC = strings.ToLower(net.TAC)
	if d := net.SubscriberDefault; d != nil {
		d.K = strings.ToLower(d.K)
		d.OPC = strings.ToLower(d.OPC)
	}
	lowerNSSAI := func(list []*SubscriberSNSSAI) {
		for _, entry := range list {
			if entry != nil {
				entry.SNSSAI = strings.ToLower(entry.SNSSAI)
			}
		}
	}
	for _, sub := range net.Subscribers {
		if sub == nil {
			continue
		}
		sub.K = strings.ToLower(sub.K)
		sub.OPC = strings.ToLower(sub.OPC)
		lowerNSSAI(sub.SubscribedNSSAI)
		lowerNSSAI(sub.RequestedNSSAI)
	}
	for _, gnb := range net.GNBs {
		if gnb != nil {
			gnb.NCI = strings.ToLower(gnb.NCI)
		}
	}
	for _, amf := range net.AMFs {
		if amf != nil {
			for i := range amf.NSSAI {
				amf.NSSAI[i] = strings.ToLower(amf.NSSAI[i])
			}
		}
	}
	for _, smf := range net.SMFs {
		if smf != nil {
			for i := range smf.NSSAI {
				smf.NSSAI[i] = strings.ToLower(smf.NSSAI[i])
			}
		}
	}
	for _, dn := range net.DataNetworks {
		if dn != nil {
			dn.SNSSAI = strings.ToLower(dn.SNSSAI)
		}
	}
	for _, link := range net.DataPaths {
		if link == nil {
			continue
		}
		link.A.DN.SNSSAI = strings.ToLower(link.A.DN.SNSSAI)
		link.B.DN.SNSSAI = strings.ToLower(link.B.DN.SNSSAI)
	}
}

// Validate checks the network definition against its schema and reports
// all violations together in a *ValidationError.
func (net *Network) Validate() error {
	verr := &ValidationError{}

	if !rePLMN.MatchString(net.PLMN) {
		verr.add("plmn %q must match MCC-MNC (\\d{3}-\\d{2,3})", net.PLMN)
	}
	if net.GNBIDLength < 22 || net.GNBIDLength > 32 {
		verr.add("gnbIdLength %d out of range [22, 32]", net.GNBIDLength)
	}
	if !reTAC.MatchString(net.TAC) {
		verr.add("tac %q must be 6 hex digits", net.TAC)
	}
	if d := net.SubscriberDefault; d != nil {
		checkKey(verr, "subscriberDefault.k", d.K)
		checkKey(verr, "subscriberDefault.opc", d.OPC)
	}

	dnIDs := mapset.NewSet[DNID]()
	for i, dn := range net.DataNetworks {
		if dn == nil {
			verr.add("dataNetworks[%d] is empty", i)
			continue
		}
		validateDataNetwork(verr, i, dn)
		if dnIDs.Contains(dn.ID()) {
			verr.add("dataNetworks[%d]: duplicate data network %s", i, dn.ID())
		}
		dnIDs.Add(dn.ID())
	}

	names := mapset.NewSet[string]()
	addName := func(where string, name string) {
		if name == "" {
			verr.add("%s: name is required", where)
			return
		}
		if names.Contains(name) {
			verr.add("%s: duplicate network function name %q", where, name)
		}
		names.Add(name)
	}

	gnbNames := mapset.NewSet[string]()
	for i, gnb := range net.GNBs {
		if gnb == nil {
			verr.add("gnbs[%d] is empty", i)
			continue
		}
		name := gnbDefaultName(i, gnb)
		addName(indexed("gnbs", i), name)
		gnbNames.Add(name)
		if gnb.NCI != "" && !reNCI.MatchString(gnb.NCI) {
			verr.add("gnbs[%d]: nci %q must be 9 hex digits", i, gnb.NCI)
		}
	}
	upfNames := mapset.NewSet[string]()
	for i, upf := range net.UPFs {
		if upf == nil {
			verr.add("upfs[%d] is empty", i)
			continue
		}
		addName(indexed("upfs", i), upf.Name)
		upfNames.Add(upf.Name)
	}
	for i, amf := range net.AMFs {
		if amf == nil {
			verr.add("amfs[%d] is empty", i)
			continue
		}
		addName(indexed("amfs", i), amfDefaultName(i, amf))
		if amf.AMFI != nil {
			validateAMFI(verr, i, amf.AMFI)
		}
		for _, snssai := range amf.NSSAI {
			checkSNSSAI(verr, indexed("amfs", i)+".nssai", snssai)
		}
	}
	for i, smf := range net.SMFs {
		if smf == nil {
			verr.add("smfs[%d] is empty", i)
			continue
		}
		addName(indexed("smfs", i), smfDefaultName(i, smf))
		for _, snssai := range smf.NSSAI {
			checkSNSSAI(verr, indexed("smfs", i)+".nssai", snssai)
		}
	}

	for i, sub := range net.Subscribers {
		if sub == nil {
			verr.add("subscribers[%d] is empty", i)
			continue
		}
		validateSubscriber(verr, i, sub, dnIDs, gnbNames)
	}

	for i, link := range net.DataPaths {
		if link == nil {
			verr.add("dataPaths[%d] is empty", i)
			continue
		}
		if link.invalid != "" {
			verr.add("dataPaths[%d]: %s", i, link.invalid)
			continue
		}
		if link.Cost < 0 {
			verr.add("dataPaths[%d]: cost %d must not be negative", i, link.Cost)
		}
		for _, node := range []DataPathNode{link.A, link.B} {
			switch {
			case node.invalid != "":
				verr.add("dataPaths[%d]: %s", i, node.invalid)
			case node.IsDN():
				if !dnIDs.Contains(node.DN) {
					verr.add("dataPaths[%d]: unknown data network %s", i, node.DN)
				}
			default:
				if !gnbNames.Contains(node.Name) && !upfNames.Contains(node.Name) {
					verr.add("dataPaths[%d]: unknown gNB or UPF %q", i, node.Name)
				}
			}
		}
	}

	return verr.orNil()
}

func validateDataNetwork(verr *ValidationError, i int, dn *DataNetwork) {
	where := indexed("dataNetworks", i)
	checkSNSSAI(verr, where, dn.SNSSAI)
	if dn.DNN == "" {
		verr.add("%s: dnn is required", where)
	}

	typ := dn.Type
	if typ == "" {
		typ = DNTypeIPv4
	}
	switch typ {
	case DNTypeIPv4, DNTypeIPv6:
		if dn.Subnet == "" {
			verr.add("%s: subnet is required for type %s", where, typ)
			break
		}
		prefix, err := netip.ParsePrefix(dn.Subnet)
		if err != nil {
			verr.add("%s: invalid subnet %q", where, dn.Subnet)
		} else if prefix.Addr().Is4() != (typ == DNTypeIPv4) {
			verr.add("%s: subnet %s does not match type %s", where, dn.Subnet, typ)
		}
	case DNTypeEthernet:
	default:
		verr.add("%s: type %q must be one of %v", where, dn.Type, AllDNTypes())
	}

	if dn.FiveQI != 0 && (dn.FiveQI < 1 || dn.FiveQI > 255) {
		verr.add("%s: fiveQi %d out of range [1, 255]", where, dn.FiveQI)
	}
	if dn.FiveQIPriorityLevel != 0 && (dn.FiveQIPriorityLevel < 1 || dn.FiveQIPriorityLevel > 127) {
		verr.add("%s: fiveQiPriorityLevel %d out of range [1, 127]", where, dn.FiveQIPriorityLevel)
	}
	if dn.ARPLevel != 0 && (dn.ARPLevel < 1 || dn.ARPLevel > 15) {
		verr.add("%s: arpLevel %d out of range [1, 15]", where, dn.ARPLevel)
	}
	checkAMBR(verr, where, dn.AMBR)
}

func validateAMFI(verr *ValidationError, i int, amfi []int) {
	where := indexed("amfs", i) + ".amfi"
	if len(amfi) != 3 {
		verr.add("%s must be [region, set, pointer]", where)
		return
	}
	limits := []struct {
		name string
		bits uint
	}{{"region", 8}, {"set", 10}, {"pointer", 6}}
	for j, l := range limits {
		if amfi[j] < 0 || amfi[j] >= 1<<l.bits {
			verr.add("%s: %s %d exceeds %d bits", where, l.name, amfi[j], l.bits)
		}
	}
}

func validateSubscriber(verr *ValidationError, i int, sub *Subscriber, dnIDs mapset.Set[DNID], gnbNames mapset.Set[string]) {
	where := indexed("subscribers", i)
	if !reSUPI.MatchString(sub.SUPI) {
		verr.add("%s: supi %q must be 15 digits", where, sub.SUPI)
	} else if sub.Count > 1 {
		if _, err := IncrementSUPI(sub.SUPI, sub.Count-1); err != nil {
			verr.add("%s: %v", where, err)
		}
	}
	if sub.Count < 1 {
		verr.add("%s: count %d must be at least 1", where, sub.Count)
	}
	if sub.K != "" {
		checkKey(verr, where+".k", sub.K)
	}
	if sub.OPC != "" {
		checkKey(verr, where+".opc", sub.OPC)
	}
	checkNSSAI := func(field string, list []*SubscriberSNSSAI) {
		for j, entry := range list {
			w := indexed(where+"."+field, j)
			if entry == nil {
				verr.add("%s is empty", w)
				continue
			}
			checkSNSSAI(verr, w, entry.SNSSAI)
			for _, dnn := range entry.DNNs {
				if id := (DNID{SNSSAI: entry.SNSSAI, DNN: dnn}); !dnIDs.Contains(id) {
					verr.add("%s: unknown data network %s", w, id)
				}
			}
		}
	}
	checkNSSAI("subscribedNSSAI", sub.SubscribedNSSAI)
	checkNSSAI("requestedNSSAI", sub.RequestedNSSAI)
	checkAMBR(verr, where, sub.AMBR)
	for _, gnb := range sub.GNBs {
		if !gnbNames.Contains(gnb) {
			verr.add("%s: unknown gNB %q", where, gnb)
		}
	}
}

func checkSNSSAI(verr *ValidationError, where string, snssai string) {
	if !reSNSSAI.MatchString(snssai) {
		verr.add("%s: snssai %q must be 2 or 8 hex digits", where, snssai)
	}
}

func checkKey(verr *ValidationError, where string, key string) {
	if !reKey.MatchString(key) {
		verr.add("%s must be 32 hex digits", where)
	}
}

func checkAMBR(verr *ValidationError, where string, ambr *AMBR) {
	if ambr == nil {
		return
	}
	if ambr.Uplink <= 0 || ambr.Downlink <= 0 {
		verr.add("%s: ambr %d/%d Mbps must be positive", where, ambr.Uplink, ambr.Downlink)
	}
}
