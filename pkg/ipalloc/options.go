package ipalloc

import (
	"fmt"
	"net"
	"strings"
)

const DefaultSpace string = "172.25.192.0/18"
const DefaultMaxSpacePrefix int = 18

// Options configure an Allocator.
type Options struct {
	Space          string  `yaml:"space" json:"space"`                     // IPv4 CIDR all automatic networks are taken from
	MaxSpacePrefix int     `yaml:"maxSpacePrefix" json:"maxSpacePrefix"`   // the space prefix length must not exceed this
	Fixed          []Fixed `yaml:"fixed,omitempty" json:"fixed,omitempty"` // operator assignments, loaded before allocation
}

// Fixed assigns ip to host on network.
type Fixed struct {
	Network string `yaml:"network" json:"network"`
	Host    string `yaml:"host" json:"host"`
	IP      string `yaml:"ip" json:"ip"`
}

func (f Fixed) String() string {
	return fmt.Sprintf("%s,%s,%s", f.Network, f.Host, f.IP)
}

// ParseFixed parses "network,host,ip".
func ParseFixed(s string) (Fixed, error) {
	sep := strings.Split(s, ",")
	if len(sep) != 3 {
		return Fixed{}, fmt.Errorf("fixed assignment %q must be network,host,ip", s)
	}
	f := Fixed{
		Network: strings.TrimSpace(sep[0]),
		Host:    strings.TrimSpace(sep[1]),
		IP:      strings.TrimSpace(sep[2]),
	}
	if f.Network == "" || f.Host == "" {
		return Fixed{}, fmt.Errorf("fixed assignment %q has empty network or host", s)
	}
	if ip := net.ParseIP(f.IP); ip == nil || ip.To4() == nil {
		return Fixed{}, fmt.Errorf("fixed assignment %q has invalid IPv4 address", s)
	}
	return f, nil
}

func ParseFixedList(list []string) ([]Fixed, error) {
	fixed := make([]Fixed, 0, len(list))
	for _, s := range list {
		f, err := ParseFixed(s)
		if err != nil {
			return nil, err
		}
		fixed = append(fixed, f)
	}
	return fixed, nil
}
