package types

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseNetwork(t *testing.T) {
	net, err := ParseNetwork([]byte(testNetworkYAML))
	if err != nil {
		t.Fatal(err)
	}

	if len(net.DataPaths) != 6 {
		t.Fatalf("number of links mismatch (%v)", len(net.DataPaths))
	}
	link := net.DataPaths[0]
	if !link.A.Equal(NameNode("gnb0")) || !link.B.Equal(NameNode("upf1")) || link.Cost != 2 {
		t.Errorf("link 0 mismatch %v", link)
	}
	if net.DataPaths[1].Cost != DefaultLinkCost {
		t.Errorf("default link cost mismatch %v", net.DataPaths[1].Cost)
	}
	if link := net.DataPaths[4]; !link.A.Equal(DNNode("80000001", "vcam")) {
		t.Errorf("dn endpoint mismatch %v", link.A)
	}
	if link := net.DataPaths[5]; !link.B.Equal(DNNode("80000001", "lan")) || link.Cost != 0 {
		t.Errorf("mapping link mismatch %v", link)
	}

	// data network defaults
	dn := net.DataNetworks[0]
	if dn.FiveQI != 9 || dn.FiveQIPriorityLevel != 90 || dn.ARPLevel != 8 {
		t.Errorf("qos defaults mismatch %+v", dn)
	}
	if dn.AMBR == nil || dn.AMBR.Uplink != 1000 || dn.AMBR.Downlink != 1000 {
		t.Errorf("ambr defaults mismatch %+v", dn.AMBR)
	}
	if net.DataNetworks[1].FiveQI != 7 {
		t.Errorf("explicit 5qi overwritten %v", net.DataNetworks[1].FiveQI)
	}

	// network function defaults
	if len(net.AMFs) != 1 || net.AMFs[0].Name != "amf" {
		t.Errorf("default amf mismatch %+v", net.AMFs)
	}
	if len(net.SMFs) != 1 || net.SMFs[0].Name != "smf" {
		t.Errorf("default smf mismatch %+v", net.SMFs)
	}
	if got := net.AMFs[0].NSSAI; len(got) != 2 || got[0] != "01" || got[1] != "80000001" {
		t.Errorf("default amf nssai mismatch %v", got)
	}
	if net.GNBs[0].NCI != "00000100f" {
		t.Errorf("default nci mismatch %v", net.GNBs[0].NCI)
	}

	// subscriber defaults
	sub := net.Subscribers[0]
	if sub.K != "8baf473f2f8fd09487cccbd7097c6862" {
		t.Errorf("inherited k mismatch %v", sub.K)
	}
	if len(sub.GNBs) != 2 {
		t.Errorf("default gnbs mismatch %v", sub.GNBs)
	}
	if len(sub.SubscribedNSSAI) != 2 || len(sub.SubscribedNSSAI[1].DNNs) != 2 {
		t.Errorf("default subscribed nssai mismatch %+v", sub.SubscribedNSSAI)
	}
	if sub.AMBR.Uplink != 1000 || sub.AMBR.Downlink != 2000 {
		t.Errorf("default subscriber ambr mismatch %+v", sub.AMBR)
	}
}

func TestParseNetworkJSON(t *testing.T) {
	doc := `{
  "plmn": "001-001", "gnbIdLength": 32, "tac": "000001",
  "gnbs": [{}], "upfs": [{"name": "upf1"}],
  "dataNetworks": [{"snssai": "01", "dnn": "internet", "subnet": "10.1.0.0/16"}],
  "dataPaths": [["gnb0", "upf1"], ["upf1", {"snssai": "01", "dnn": "internet"}, 4]],
  "subscribers": [{"supi": "001001000000001"}]
}`
	net, err := ParseNetwork([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if net.GNBs[0].Name != "gnb0" {
		t.Errorf("default gnb name mismatch %v", net.GNBs[0].Name)
	}
	if net.DataNetworks[0].Type != DNTypeIPv4 {
		t.Errorf("default dn type mismatch %v", net.DataNetworks[0].Type)
	}
	if net.DataPaths[1].Cost != 4 {
		t.Errorf("link cost mismatch %v", net.DataPaths[1].Cost)
	}
	sub := net.Subscribers[0]
	if len(sub.K) != 32 || len(sub.OPC) != 32 || sub.K == sub.OPC {
		t.Errorf("random keys mismatch k=%v opc=%v", sub.K, sub.OPC)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	doc := `
plmn: "1-01"
gnbIdLength: 40
tac: "xyz"
subscribers:
  - supi: "12345"
    gnbs: [gnb9]
    subscribedNSSAI:
      - snssai: "01"
        dnns: [nowhere]
gnbs:
  - name: gnb0
    nci: "12"
  - name: gnb0
amfs:
  - amfi: [256, 1024, 64]
upfs:
  - name: upf1
dataNetworks:
  - snssai: "1"
    dnn: internet
  - snssai: "01"
    dnn: v6
    type: IPv6
    subnet: 10.0.0.0/8
  - snssai: "01"
    dnn: bad
    type: PPP
    arpLevel: 16
dataPaths:
  - [gnb0, upf2]
  - [upf1, {snssai: "02", dnn: internet}, -1]
  - [upf1]
`
	_, err := ParseNetwork([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	expected := []string{
		"plmn",
		"gnbIdLength 40",
		"tac",
		"supi \"12345\"",
		"unknown gNB \"gnb9\"",
		"unknown data network 01:nowhere",
		"nci \"12\"",
		"duplicate network function name \"gnb0\"",
		"region 256",
		"set 1024",
		"pointer 64",
		"snssai \"1\"",
		"subnet is required for type IPv4",
		"does not match type IPv6",
		"type \"PPP\"",
		"arpLevel 16",
		"unknown gNB or UPF \"upf2\"",
		"unknown data network 02:internet",
		"cost -1",
		"must have 2 or 3 elements",
	}
	for _, msg := range expected {
		if !verr.Contains(msg) {
			t.Errorf("violation %q not reported in:\n%v", msg, verr)
		}
	}
}

func TestLoadNetwork(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netdef.yaml")
	if err := os.WriteFile(path, []byte(testNetworkYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadNetwork(path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadNetwork(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("missing file accepted")
	}
}
