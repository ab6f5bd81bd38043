package types

import (
	mapset "github.com/deckarep/golang-set/v2"
)

func flattenNSSAI(list []*SubscriberSNSSAI) []DNID {
	ids := []DNID{}
	for _, entry := range list {
		for _, dnn := range entry.DNNs {
			ids = append(ids, DNID{SNSSAI: entry.SNSSAI, DNN: dnn})
		}
	}
	return ids
}

func cloneNSSAI(list []*SubscriberSNSSAI) []*SubscriberSNSSAI {
	if list == nil {
		return nil
	}
	cloned := make([]*SubscriberSNSSAI, 0, len(list))
	for _, entry := range list {
		cloned = append(cloned, &SubscriberSNSSAI{
			SNSSAI: entry.SNSSAI,
			DNNs:   append([]string{}, entry.DNNs...),
		})
	}
	return cloned
}

func (sub *Subscriber) clone() Subscriber {
	s := *sub
	s.SubscribedNSSAI = cloneNSSAI(sub.SubscribedNSSAI)
	s.RequestedNSSAI = cloneNSSAI(sub.RequestedNSSAI)
	s.GNBs = append([]string{}, sub.GNBs...)
	if sub.AMBR != nil {
		ambr := *sub.AMBR
		s.AMBR = &ambr
	}
	s.SubscribedDN = flattenNSSAI(s.SubscribedNSSAI)
	if len(s.RequestedNSSAI) > 0 {
		s.RequestedDN = flattenNSSAI(s.RequestedNSSAI)
	} else {
		s.RequestedDN = append([]DNID{}, s.SubscribedDN...)
	}
	return s
}

func (sub *Subscriber) HasGNB(name string) bool {
	for _, gnb := range sub.GNBs {
		if gnb == name {
			return true
		}
	}
	return false
}

// ListSubscribers returns one entry per declared subscriber record, or one
// entry per UE when expandCount is set. With gnbFilter, only subscribers
// allowed to attach to that gNB are listed.
func (net *Network) ListSubscribers(expandCount bool, gnbFilter *string) []Subscriber {
	subs := []Subscriber{}
	for _, sub := range net.Subscribers {
		if gnbFilter != nil && !sub.HasGNB(*gnbFilter) {
			continue
		}
		if !expandCount || sub.Count <= 1 {
			subs = append(subs, sub.clone())
			continue
		}
		for i := 0; i < sub.Count; i++ {
			supi, err := IncrementSUPI(sub.SUPI, i)
			if err != nil {
				// rejected by Validate
				break
			}
			s := sub.clone()
			s.SUPI = supi
			s.Count = 1
			subs = append(subs, s)
		}
	}
	return subs
}

// FindSubscriber looks up the UE with the given SUPI, including expanded ones.
func (net *Network) FindSubscriber(supi string) (Subscriber, bool) {
	for _, sub := range net.ListSubscribers(true, nil) {
		if sub.SUPI == supi {
			return sub, true
		}
	}
	return Subscriber{}, false
}

type GNBUEPair struct {
	GNB GNB
	UE  Subscriber
}

// PairGNBUE assigns each UE to exactly one gNB, for RAN simulators that
// cannot serve several UEs from one gNB instance.
func (net *Network) PairGNBUE() ([]GNBUEPair, error) {
	gnbs := map[string]GNB{}
	for _, gnb := range net.ListGNBs() {
		gnbs[gnb.Name] = gnb
	}

	claimed := mapset.NewSet[string]()
	pairs := []GNBUEPair{}
	for _, ue := range net.ListSubscribers(true, nil) {
		if len(ue.GNBs) != 1 {
			return nil, NewTopologyError("UE %s must be connected to exactly one gNB, found %d", ue.SUPI, len(ue.GNBs))
		}
		name := ue.GNBs[0]
		gnb, ok := gnbs[name]
		if !ok {
			return nil, NewTopologyError("UE %s refers to unknown gNB %s", ue.SUPI, name)
		}
		if claimed.Contains(name) {
			return nil, NewTopologyError("gNB %s is connected to more than one UE", name)
		}
		claimed.Add(name)
		pairs = append(pairs, GNBUEPair{GNB: gnb, UE: ue})
	}
	return pairs, nil
}
