package ipalloc

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/pkg/errors"

	"github.com/cpflat/nrtopo/pkg/logger"
)

const (
	networkBits = 24
	networkStep = 1 << (32 - networkBits) // one /24 block
	hostStep    = 1
	hostMax     = 254 // .255 is broadcast
)

// default host reservation of every network
var reservedHosts = []struct {
	name  string
	octet uint32
}{{".0", 0}, {".1", 1}}

// hostSpace holds the host bindings inside one /24 network.
type hostSpace struct {
	hosts  *BiMap[string, uint32] // host name <-> last octet
	cursor uint32                 // last octet handed out by the forward search
}

func newHostSpace() *hostSpace {
	hs := &hostSpace{hosts: NewBiMap[string, uint32]()}
	for _, r := range reservedHosts {
		hs.hosts.Set(r.name, r.octet)
	}
	return hs
}

// An Allocator assigns a /24 block to each named network and a host address
// to each named endpoint within a network. Repeated queries return the
// same answer. It is safe for use by concurrent callers.
type Allocator struct {
	mu sync.Mutex

	space    *net.IPNet
	nBlocks  int // number of /24 blocks in space
	networks *BiMap[string, uint32] // network name <-> /24 network address
	cursor   int                    // index of the last block handed out, -1 initially
	hosts    map[string]*hostSpace
	started  bool // automatic allocation has happened
}

func New(opts Options) (*Allocator, error) {
	if opts.Space == "" {
		opts.Space = DefaultSpace
	}
	if opts.MaxSpacePrefix == 0 {
		opts.MaxSpacePrefix = DefaultMaxSpacePrefix
	}

	_, space, err := net.ParseCIDR(opts.Space)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address space")
	}
	if space.IP.To4() == nil {
		return nil, fmt.Errorf("address space %s is not IPv4", opts.Space)
	}
	ones, _ := space.Mask.Size()
	if ones > opts.MaxSpacePrefix || ones > networkBits {
		return nil, fmt.Errorf("address space %s is smaller than /%d", opts.Space, opts.MaxSpacePrefix)
	}

	a := &Allocator{
		space:    space,
		nBlocks:  int(cidr.AddressCount(space) / networkStep),
		networks: NewBiMap[string, uint32](),
		cursor:   -1,
		hosts:    map[string]*hostSpace{},
	}
	if err := a.SaveFixed(opts.Fixed); err != nil {
		return nil, err
	}
	logger.AllocLog.Debugf("address space %s: %d networks, %d fixed assignments", space, a.nBlocks, len(opts.Fixed))
	return a, nil
}

func (a *Allocator) Space() string {
	return a.space.String()
}

// SaveFixed records operator assignments. It must be called before any
// automatic allocation, so that fixed addresses are never given away.
// The batch is applied as a whole: on error nothing is recorded.
func (a *Allocator) SaveFixed(fixed []Fixed) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started && len(fixed) > 0 {
		return fmt.Errorf("fixed assignments must be saved before automatic allocation")
	}

	plan := &fixedPlan{base: a, networks: a.networks.Clone(), hosts: map[string]*hostSpace{}}
	for _, f := range fixed {
		if err := plan.add(f); err != nil {
			return err
		}
	}

	a.networks = plan.networks
	for name, hs := range plan.hosts {
		a.hosts[name] = hs
	}
	for _, f := range fixed {
		logger.AllocLog.Debugf("fixed %s", f)
	}
	return nil
}

// fixedPlan stages fixed records on copies of the allocator state.
type fixedPlan struct {
	base     *Allocator
	networks *BiMap[string, uint32]
	hosts    map[string]*hostSpace
}

func (p *fixedPlan) add(f Fixed) error {
	ip := net.ParseIP(f.IP)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("fixed assignment %s has invalid IPv4 address", f)
	}
	addr := ipv4ToUint32(ip)
	netAddr := addr &^ (networkStep - 1)
	octet := addr & (networkStep - 1)

	if octet > hostMax {
		return &ConflictError{Record: "fixed " + f.String(), Existing: "broadcast address"}
	}
	if err := p.bindNetwork(f.Network, netAddr, f.String()); err != nil {
		return err
	}
	hs := p.hostsOf(f.Network)
	if v, ok := hs.hosts.Get(f.Host); ok && v != octet {
		return &ConflictError{
			Record:   "fixed " + f.String(),
			Existing: fmt.Sprintf("host %s=%s in network %s", f.Host, uint32ToIPv4(netAddr|v), f.Network),
		}
	}
	if k, ok := hs.hosts.GetByValue(octet); ok && k != f.Host {
		return &ConflictError{
			Record:   "fixed " + f.String(),
			Existing: fmt.Sprintf("host %s=%s in network %s", k, uint32ToIPv4(addr), f.Network),
		}
	}
	return hs.hosts.Set(f.Host, octet)
}

func (p *fixedPlan) bindNetwork(name string, netAddr uint32, record string) error {
	if v, ok := p.networks.Get(name); ok && v != netAddr {
		return &ConflictError{
			Record:   "fixed " + record,
			Existing: fmt.Sprintf("network %s=%s", name, blockString(v)),
		}
	}
	if k, ok := p.networks.GetByValue(netAddr); ok && k != name {
		return &ConflictError{
			Record:   "fixed " + record,
			Existing: fmt.Sprintf("network %s=%s", k, blockString(netAddr)),
		}
	}
	return p.networks.Set(name, netAddr)
}

func (p *fixedPlan) hostsOf(network string) *hostSpace {
	if hs, ok := p.hosts[network]; ok {
		return hs
	}
	hs := newHostSpace()
	if cur, ok := p.base.hosts[network]; ok {
		hs = &hostSpace{hosts: cur.hosts.Clone(), cursor: cur.cursor}
	}
	p.hosts[network] = hs
	return hs
}

func (a *Allocator) hostsOf(network string) *hostSpace {
	hs, ok := a.hosts[network]
	if !ok {
		hs = newHostSpace()
		a.hosts[network] = hs
	}
	return hs
}

// AllocNetwork returns the /24 CIDR of a network, allocating it on first use.
func (a *Allocator) AllocNetwork(name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	netAddr, err := a.allocNetwork(name)
	if err != nil {
		return "", err
	}
	return blockString(netAddr), nil
}

func (a *Allocator) allocNetwork(name string) (uint32, error) {
	if v, ok := a.networks.Get(name); ok {
		return v, nil
	}
	a.started = true

	ones, _ := a.space.Mask.Size()
	for i := a.cursor + 1; i < a.nBlocks; i++ {
		block, err := cidr.Subnet(a.space, networkBits-ones, i)
		if err != nil {
			return 0, err
		}
		netAddr := ipv4ToUint32(block.IP)
		if a.networks.HasValue(netAddr) {
			continue
		}
		if err := a.networks.Set(name, netAddr); err != nil {
			return 0, err
		}
		a.cursor = i
		logger.AllocLog.Tracef("network %s=%s", name, block)
		return netAddr, nil
	}
	return 0, &CapacityError{Scope: "address space " + a.space.String(), Limit: fmt.Sprintf("%d networks", a.nBlocks)}
}

// AllocNetif returns the address of host on network, allocating on first use.
func (a *Allocator) AllocNetif(network string, host string) (string, error) {
	return a.AllocNetifs(network, host, 1)
}

// AllocNetifs reserves count consecutive addresses for host on network and
// returns the first one. The following addresses are recorded under
// host+1, host+2, ... A host that already has an address keeps it; the
// addresses after it must then be free or already belong to the host.
func (a *Allocator) AllocNetifs(network string, host string, count int) (string, error) {
	if count < 1 {
		return "", fmt.Errorf("count %d must be at least 1", count)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	netAddr, err := a.allocNetwork(network)
	if err != nil {
		return "", err
	}
	hs := a.hostsOf(network)

	var octet uint32
	if v, ok := hs.hosts.Get(host); ok {
		octet = v
		if err := a.extendHost(network, hs, netAddr, host, octet, count); err != nil {
			return "", err
		}
	} else {
		a.started = true
		octet, err = a.searchHost(network, hs, netAddr, host, count)
		if err != nil {
			return "", err
		}
	}

	ip, err := cidr.Host(&net.IPNet{IP: uint32ToIPv4(netAddr), Mask: net.CIDRMask(networkBits, 32)}, int(octet))
	if err != nil {
		return "", err
	}
	return ip.String(), nil
}

func syntheticHost(host string, i int) string {
	return fmt.Sprintf("%s+%d", host, i)
}

// searchHost moves the cursor forward until count consecutive octets are free.
func (a *Allocator) searchHost(network string, hs *hostSpace, netAddr uint32, host string, count int) (uint32, error) {
	for i := 1; i < count; i++ {
		if v, ok := hs.hosts.Get(syntheticHost(host, i)); ok {
			return 0, &ConflictError{
				Record:   fmt.Sprintf("host %s in network %s", syntheticHost(host, i), network),
				Existing: uint32ToIPv4(netAddr | v).String(),
			}
		}
	}

	span := uint32(count-1) * hostStep
	for n := hs.cursor + hostStep; n+span <= hostMax; n += hostStep {
		free := true
		for i := 0; i < count; i++ {
			if hs.hosts.HasValue(n + uint32(i)*hostStep) {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		if err := hs.hosts.Set(host, n); err != nil {
			return 0, err
		}
		for i := 1; i < count; i++ {
			if err := hs.hosts.Set(syntheticHost(host, i), n+uint32(i)*hostStep); err != nil {
				return 0, err
			}
		}
		hs.cursor = n + span
		logger.AllocLog.Tracef("host %s=%s (count %d) in network %s", host, uint32ToIPv4(netAddr|n), count, network)
		return n, nil
	}
	return 0, &CapacityError{Scope: "network " + network, Limit: fmt.Sprintf("%d consecutive hosts", count)}
}

// extendHost verifies and records the count-1 octets after an existing host.
func (a *Allocator) extendHost(network string, hs *hostSpace, netAddr uint32, host string, octet uint32, count int) error {
	for i := 1; i < count; i++ {
		n := octet + uint32(i)*hostStep
		key := syntheticHost(host, i)
		if n > hostMax {
			return &CapacityError{Scope: "network " + network, Limit: fmt.Sprintf("host %s cannot extend to %d addresses", host, count)}
		}
		if k, ok := hs.hosts.GetByValue(n); ok && k != key {
			return &ConflictError{
				Record:   fmt.Sprintf("host %s in network %s", key, network),
				Existing: fmt.Sprintf("host %s=%s", k, uint32ToIPv4(netAddr|n)),
			}
		}
		if v, ok := hs.hosts.Get(key); ok && v != n {
			return &ConflictError{
				Record:   fmt.Sprintf("host %s=%s in network %s", key, uint32ToIPv4(netAddr|n), network),
				Existing: uint32ToIPv4(netAddr | v).String(),
			}
		}
	}
	for i := 1; i < count; i++ {
		if err := hs.hosts.Set(syntheticHost(host, i), octet+uint32(i)*hostStep); err != nil {
			return err
		}
	}
	return nil
}

// FindNetwork returns the name of the network containing ip.
func (a *Allocator) FindNetwork(ip string) (string, bool) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return "", false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.networks.GetByValue(ipv4ToUint32(parsed) &^ (networkStep - 1))
}

// LookupNetif returns the address of host on network without allocating.
func (a *Allocator) LookupNetif(network string, host string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	netAddr, ok := a.networks.Get(network)
	if !ok {
		return "", false
	}
	hs, ok := a.hosts[network]
	if !ok {
		return "", false
	}
	octet, ok := hs.hosts.Get(host)
	if !ok {
		return "", false
	}
	return uint32ToIPv4(netAddr | octet).String(), true
}

type NetworkRecord struct {
	Name string `yaml:"name" json:"name"`
	CIDR string `yaml:"cidr" json:"cidr"`
}

type NetifRecord struct {
	Host string `yaml:"host" json:"host"`
	IP   string `yaml:"ip" json:"ip"`
}

func lessUint32(a, b uint32) bool { return a < b }

// Networks lists all known networks ordered by address.
func (a *Allocator) Networks() []NetworkRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	records := []NetworkRecord{}
	for _, name := range a.networks.Keys(lessUint32) {
		v, _ := a.networks.Get(name)
		records = append(records, NetworkRecord{Name: name, CIDR: blockString(v)})
	}
	return records
}

// Netifs lists the hosts of a network ordered by address, without the
// default reservations.
func (a *Allocator) Netifs(network string) []NetifRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	records := []NetifRecord{}
	netAddr, ok := a.networks.Get(network)
	hs, ok2 := a.hosts[network]
	if !ok || !ok2 {
		return records
	}
	for _, host := range hs.hosts.Keys(lessUint32) {
		if strings.HasPrefix(host, ".") {
			continue
		}
		v, _ := hs.hosts.Get(host)
		records = append(records, NetifRecord{Host: host, IP: uint32ToIPv4(netAddr | v).String()})
	}
	return records
}

func ipv4ToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func uint32ToIPv4(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)).To4()
}

func blockString(netAddr uint32) string {
	return fmt.Sprintf("%s/%d", uint32ToIPv4(netAddr), networkBits)
}
