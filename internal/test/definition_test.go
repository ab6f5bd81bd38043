package example

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
	"github.com/cpflat/nrtopo/pkg/model"
	"github.com/cpflat/nrtopo/pkg/types"
)

const definitionTemplate = `
plmn: "001-01"
gnbIdLength: %d
tac: "000001"
subscribers:
  - supi: "001010000000001"
%s
gnbs:
  - name: gnb0
upfs:
  - name: upf1
dataNetworks:
%s
dataPaths:
%s
`

const defaultDataNetworks = `
  - snssai: "01"
    dnn: internet
    subnet: 10.60.0.0/16
`

const defaultDataPaths = `
  - [gnb0, upf1]
  - [upf1, {snssai: "01", dnn: internet}]
`

func definition(gnbIDLength int, subscriber, dataNetworks, dataPaths string) string {
	if dataNetworks == "" {
		dataNetworks = defaultDataNetworks
	}
	if dataPaths == "" {
		dataPaths = defaultDataPaths
	}
	return fmt.Sprintf(definitionTemplate, gnbIDLength, subscriber, dataNetworks, dataPaths)
}

// TestDefinitionValidation tests various network definitions using table-driven tests
func TestDefinitionValidation(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectError bool
		errorMsgs   []string
	}{
		{
			name: "Valid",
			yaml: definition(24, "", "", ""),
		},
		{
			name:        "GNBIDLength_OutOfRange",
			yaml:        definition(40, "", "", ""),
			expectError: true,
			errorMsgs:   []string{"gnbIdLength 40 out of range"},
		},
		{
			name: "Link_UnknownNodes",
			yaml: definition(24, "", "", `
  - [gnb0, upf9]
  - [upf1, {snssai: "01", dnn: nowhere}]
`),
			expectError: true,
			errorMsgs: []string{
				"dataPaths[0]: unknown gNB or UPF \"upf9\"",
				"dataPaths[1]: unknown data network 01:nowhere",
			},
		},
		{
			name:        "Link_NegativeCost",
			yaml:        definition(24, "", "", "  - [gnb0, upf1, -1]\n"),
			expectError: true,
			errorMsgs:   []string{"must not be negative"},
		},
		{
			name: "DataNetwork_Duplicate",
			yaml: definition(24, "", defaultDataNetworks+`
  - snssai: "01"
    dnn: internet
    subnet: 10.61.0.0/16
`, ""),
			expectError: true,
			errorMsgs:   []string{"duplicate data network 01:internet"},
		},
		{
			name: "DataNetwork_SubnetFamily",
			yaml: definition(24, "", defaultDataNetworks+`
  - snssai: "02"
    dnn: ims
    type: IPv6
    subnet: 10.62.0.0/16
`, ""),
			expectError: true,
			errorMsgs:   []string{"does not match type IPv6"},
		},
		{
			name: "Subscriber_AllViolations",
			yaml: definition(24, `    k: "xyz"
    gnbs: [gnb7]
    subscribedNSSAI:
      - snssai: "01"
        dnns: [ims]`, "", ""),
			expectError: true,
			errorMsgs: []string{
				"subscribers[0].k must be 32 hex digits",
				"unknown gNB \"gnb7\"",
				"unknown data network 01:ims",
			},
		},
		{
			name:        "Subscriber_CountZero",
			yaml:        definition(24, "    count: 0", "", ""),
			expectError: true,
			errorMsgs:   []string{"subscribers[0]: count 0 must be at least 1"},
		},
		{
			name:        "Subscriber_CountOverflow",
			yaml:        definition(24, "    count: 1000000000000000", "", ""),
			expectError: true,
			errorMsgs:   []string{"subscribers[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nw, err := types.ParseNetwork([]byte(tt.yaml))
			if !tt.expectError {
				require.NoError(t, err)
				require.NotNil(t, nw)
				return
			}
			require.Error(t, err)
			var verr *types.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			for _, msg := range tt.errorMsgs {
				assert.True(t, verr.Contains(msg), "%q not reported in %v", msg, verr.Violations)
			}
		})
	}
}

// TestFixedAddressConflict checks that operator assignments are checked
// against each other before anything is allocated.
func TestFixedAddressConflict(t *testing.T) {
	nw, err := types.ParseNetwork([]byte(definition(24, "", "", "")))
	require.NoError(t, err)

	fixed, err := ipalloc.ParseFixedList([]string{
		"n3,upf1,172.25.200.10",
		"n3,gnb0,172.25.200.10",
	})
	require.NoError(t, err)
	_, err = ipalloc.New(ipalloc.Options{Fixed: fixed})
	var cerr *ipalloc.ConflictError
	require.True(t, errors.As(err, &cerr), "expected ConflictError, got %v", err)

	fixed = fixed[:1]
	alloc, err := ipalloc.New(ipalloc.Options{Fixed: fixed})
	require.NoError(t, err)
	require.NoError(t, model.AssignAddresses(nw, alloc))

	ip, ok := alloc.LookupNetif(model.NetworkN3, "upf1")
	require.True(t, ok)
	assert.Equal(t, "172.25.200.10", ip)
	ip, ok = alloc.LookupNetif(model.NetworkN3, "gnb0")
	require.True(t, ok)
	assert.Equal(t, "172.25.200.2", ip)
}

func TestPairGNBUE(t *testing.T) {
	nw, err := types.ParseNetwork([]byte(definition(24, "    count: 2", "", "")))
	require.NoError(t, err)

	// two UEs on a single gNB cannot be paired
	_, err = nw.PairGNBUE()
	var terr *types.TopologyError
	require.True(t, errors.As(err, &terr), "expected TopologyError, got %v", err)

	nw, err = types.ParseNetwork([]byte(definition(24, "", "", "")))
	require.NoError(t, err)
	pairs, err := nw.PairGNBUE()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "gnb0", pairs[0].GNB.Name)
	assert.Equal(t, "001010000000001", pairs[0].UE.SUPI)
}
