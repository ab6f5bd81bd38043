package types

const testNetworkYAML = `
plmn: "001-01"
gnbIdLength: 24
tac: "000005"
subscriberDefault:
  k: "8BAF473F2F8FD09487CCCBD7097C6862"
  opc: "8E27B6AF0E692E750F32667A3B14605D"
subscribers:
  - supi: "001010000000001"
    count: 3
  - supi: "001010000000101"
    subscribedNSSAI:
      - snssai: "01"
        dnns: [internet]
      - snssai: "80000001"
        dnns: [vcam]
    requestedNSSAI:
      - snssai: "80000001"
        dnns: [vcam]
    gnbs: [gnb1]
gnbs:
  - name: gnb0
  - name: gnb1
    nci: "000001001"
upfs:
  - name: upf1
  - name: upf140
dataNetworks:
  - snssai: "01"
    dnn: internet
    type: IPv4
    subnet: 10.1.0.0/16
  - snssai: "80000001"
    dnn: vcam
    type: IPv6
    subnet: fd00:10::/64
    fiveQi: 7
    ambr:
      uplink: 200
      downlink: 2000
  - snssai: "80000001"
    dnn: lan
    type: Ethernet
dataPaths:
  - [gnb0, upf1, 2]
  - [gnb1, upf1]
  - [upf1, upf140, 5]
  - [upf1, {snssai: "01", dnn: internet}, 3]
  - [{snssai: "80000001", dnn: vcam}, upf140]
  - {a: upf140, b: {snssai: "80000001", dnn: lan}, cost: 0}
`
