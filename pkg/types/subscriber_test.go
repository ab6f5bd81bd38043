package types

import (
	"errors"
	"testing"
)

func TestListSubscribers(t *testing.T) {
	net, err := ParseNetwork([]byte(testNetworkYAML))
	if err != nil {
		t.Fatal(err)
	}

	subs := net.ListSubscribers(false, nil)
	if len(subs) != 2 {
		t.Fatalf("number of records mismatch (%v)", len(subs))
	}
	if subs[0].Count != 3 {
		t.Errorf("unexpanded count mismatch %v", subs[0].Count)
	}

	ues := net.ListSubscribers(true, nil)
	if len(ues) != 4 {
		t.Fatalf("number of UEs mismatch (%v)", len(ues))
	}
	for i, supi := range []string{"001010000000001", "001010000000002", "001010000000003", "001010000000101"} {
		if ues[i].SUPI != supi {
			t.Errorf("supi %d mismatch %v, %v", i, ues[i].SUPI, supi)
		}
		if ues[i].Count != 1 {
			t.Errorf("expanded count mismatch %v", ues[i].Count)
		}
	}

	// requestedDN defaults to subscribedDN
	if len(ues[0].SubscribedDN) != 3 || len(ues[0].RequestedDN) != 3 {
		t.Errorf("dn lists mismatch %v %v", ues[0].SubscribedDN, ues[0].RequestedDN)
	}
	last := ues[3]
	if len(last.SubscribedDN) != 2 || last.SubscribedDN[1] != (DNID{SNSSAI: "80000001", DNN: "vcam"}) {
		t.Errorf("subscribed dn mismatch %v", last.SubscribedDN)
	}
	if len(last.RequestedDN) != 1 || last.RequestedDN[0].DNN != "vcam" {
		t.Errorf("requested dn mismatch %v", last.RequestedDN)
	}

	// expanded entries are independent copies
	ues[0].GNBs[0] = "changed"
	if net.Subscribers[0].GNBs[0] == "changed" {
		t.Errorf("expanded subscriber shares state with the network")
	}

	gnb := "gnb0"
	filtered := net.ListSubscribers(true, &gnb)
	if len(filtered) != 3 {
		t.Errorf("gnb filter mismatch (%v)", len(filtered))
	}

	if sub, ok := net.FindSubscriber("001010000000002"); !ok || sub.Count != 1 {
		t.Errorf("FindSubscriber mismatch %+v", sub)
	}
}

func TestListNetworkFunctions(t *testing.T) {
	net := &Network{
		GNBIDLength: 24,
		GNBs:        []*GNB{{}, {Name: "custom", NCI: "0x000005001"}},
		AMFs:        []*AMF{{}, {Name: "amf-b", AMFI: []int{2, 3, 4}}},
		DataNetworks: []*DataNetwork{
			{SNSSAI: "01", DNN: "a"}, {SNSSAI: "01", DNN: "b"}, {SNSSAI: "02", DNN: "c"},
		},
	}

	gnbs := net.ListGNBs()
	if gnbs[0].Name != "gnb0" || gnbs[0].NCI != "00000100f" {
		t.Errorf("gnb0 defaults mismatch %+v", gnbs[0])
	}
	if gnbs[1].NCI != "000005001" || gnbs[1].GNBID != 5 || gnbs[1].CellID != 1 {
		t.Errorf("explicit gnb mismatch %+v", gnbs[1])
	}
	// repeated calls are identical
	again := net.ListGNBs()
	for i := range gnbs {
		if gnbs[i] != again[i] {
			t.Errorf("gnb %d not reproducible", i)
		}
	}
	if net.GNBs[0].Name != "" {
		t.Errorf("ListGNBs mutated the network")
	}

	amfs := net.ListAMFs()
	if amfs[0].Name != "amf0" || amfs[0].AMFI[2] != 0 {
		t.Errorf("amf0 defaults mismatch %+v", amfs[0])
	}
	if amfs[1].AMFI[0] != 2 || len(amfs[1].NSSAI) != 2 {
		t.Errorf("amf-b mismatch %+v", amfs[1])
	}

	smfs := net.ListSMFs()
	if len(smfs) != 1 || smfs[0].Name != "smf" {
		t.Errorf("default smf mismatch %+v", smfs)
	}

	if i := net.FindDNIndex("02", "c"); i != 2 {
		t.Errorf("FindDNIndex mismatch %v", i)
	}
	if _, ok := net.FindDN("02", "a"); ok {
		t.Errorf("FindDN matched on dnn only")
	}
	if _, ok := net.FindGNB("gnb0"); !ok {
		t.Errorf("FindGNB did not apply default name")
	}
}

func TestPairGNBUE(t *testing.T) {
	base := func() *Network {
		return &Network{
			GNBIDLength: 24,
			GNBs:        []*GNB{{Name: "gnb0"}, {Name: "gnb1"}, {Name: "gnb2"}},
		}
	}

	t.Run("one to one", func(t *testing.T) {
		net := base()
		net.Subscribers = []*Subscriber{
			{SUPI: "001010000000001", Count: 1, GNBs: []string{"gnb1"}},
			{SUPI: "001010000000002", Count: 1, GNBs: []string{"gnb0"}},
		}
		pairs, err := net.PairGNBUE()
		if err != nil {
			t.Fatal(err)
		}
		if len(pairs) != 2 || pairs[0].GNB.Name != "gnb1" || pairs[1].UE.SUPI != "001010000000002" {
			t.Errorf("pairs mismatch %+v", pairs)
		}
	})

	cases := []struct {
		name string
		subs []*Subscriber
	}{
		{name: "no gnb", subs: []*Subscriber{{SUPI: "001010000000001", Count: 1}}},
		{name: "two gnbs", subs: []*Subscriber{{SUPI: "001010000000001", Count: 1, GNBs: []string{"gnb0", "gnb1"}}}},
		{name: "gnb claimed twice", subs: []*Subscriber{{SUPI: "001010000000001", Count: 2, GNBs: []string{"gnb0"}}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			net := base()
			net.Subscribers = tt.subs
			_, err := net.PairGNBUE()
			var terr *TopologyError
			if !errors.As(err, &terr) {
				t.Errorf("expected TopologyError, got %v", err)
			}
		})
	}
}
