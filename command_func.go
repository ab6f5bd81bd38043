package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
	"github.com/cpflat/nrtopo/pkg/logger"
	"github.com/cpflat/nrtopo/pkg/model"
	"github.com/cpflat/nrtopo/pkg/types"
	"github.com/cpflat/nrtopo/pkg/visual"
)

func loadContext(c *cli.Context) (*types.Network, error) {
	if c.Bool("verbose") {
		if err := logger.SetLevel("debug"); err != nil {
			return nil, err
		}
	}
	return types.LoadNetwork(c.String("netdef"))
}

func loadAllocator(c *cli.Context) (*ipalloc.Allocator, error) {
	fixed, err := ipalloc.ParseFixedList(c.StringSlice("ip-fixed"))
	if err != nil {
		return nil, err
	}
	alloc, err := ipalloc.New(ipalloc.Options{Space: c.String("ip-space"), Fixed: fixed})
	if err != nil {
		return nil, err
	}
	logger.CliLog.Debugf("allocating from %s with %d fixed assignments", alloc.Space(), len(fixed))
	return alloc, nil
}

func loadAddressPlan(c *cli.Context, net *types.Network) (*ipalloc.Allocator, error) {
	alloc, err := loadAllocator(c)
	if err != nil {
		return nil, err
	}
	if err := model.AssignAddresses(net, alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

func outputString(name string, buffer []byte) error {
	if name == "" {
		fmt.Fprintln(os.Stdout, string(buffer))
	} else if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("file %v already exists", name)
	} else {
		err = os.WriteFile(name, buffer, 0644)
		if err != nil {
			return err
		}
	}
	return nil
}

func outputYAML(name string, v interface{}) error {
	buffer, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return outputString(name, buffer)
}

func CmdCheck(c *cli.Context) error {
	net, err := loadContext(c)
	if err != nil {
		return err
	}
	if _, err := model.GatherAllUPFPeers(net); err != nil {
		return err
	}
	logger.CliLog.Infof("%s: %d gNBs, %d UPFs, %d data networks, %d data paths, %d UEs",
		c.String("netdef"), len(net.GNBs), len(net.UPFs), len(net.DataNetworks), len(net.DataPaths),
		len(net.ListSubscribers(true, nil)))
	return nil
}

func CmdPeers(c *cli.Context) error {
	net, err := loadContext(c)
	if err != nil {
		return err
	}

	if name := c.String("gnb"); name != "" {
		gnb, ok := net.FindGNB(name)
		if !ok {
			return fmt.Errorf("unknown gNB %s", name)
		}
		peers, err := model.GatherGNBPeers(net, gnb)
		if err != nil {
			return err
		}
		data := []*visual.PeerData{}
		for _, p := range peers {
			data = append(data, &visual.PeerData{Name: p.UPF.Name, Cost: p.Cost})
		}
		return outputYAML(c.String("output"), map[string]interface{}{"n3": data})
	}

	td, err := visual.GetData(net, nil)
	if err != nil {
		return err
	}
	upfs := td.UPFs
	if name := c.String("upf"); name != "" {
		upfs = nil
		for _, ud := range td.UPFs {
			if ud.Name == name {
				upfs = append(upfs, ud)
			}
		}
		if len(upfs) == 0 {
			return fmt.Errorf("unknown UPF %s", name)
		}
	}
	return outputYAML(c.String("output"), upfs)
}

func CmdSubscribers(c *cli.Context) error {
	net, err := loadContext(c)
	if err != nil {
		return err
	}

	if c.Bool("pair") {
		pairs, err := net.PairGNBUE()
		if err != nil {
			return err
		}
		list := []map[string]string{}
		for _, p := range pairs {
			list = append(list, map[string]string{"gnb": p.GNB.Name, "supi": p.UE.SUPI})
		}
		return outputYAML(c.String("output"), list)
	}

	var gnbFilter *string
	if name := c.String("gnb"); name != "" {
		gnbFilter = &name
	}
	return outputYAML(c.String("output"), net.ListSubscribers(c.Bool("expand"), gnbFilter))
}

func CmdAddr(c *cli.Context) error {
	net, err := loadContext(c)
	if err != nil {
		return err
	}
	alloc, err := loadAddressPlan(c, net)
	if err != nil {
		return err
	}

	switch c.NArg() {
	case 0:
		td, err := visual.GetData(net, alloc)
		if err != nil {
			return err
		}
		return outputYAML(c.String("output"), td.Networks)
	case 2, 3:
		count := 1
		if c.NArg() == 3 {
			count, err = strconv.Atoi(c.Args().Get(2))
			if err != nil {
				return errors.Wrapf(err, "invalid count %s", c.Args().Get(2))
			}
		}
		ip, err := alloc.AllocNetifs(c.Args().Get(0), c.Args().Get(1), count)
		if err != nil {
			return err
		}
		return outputString(c.String("output"), []byte(ip))
	default:
		return fmt.Errorf("expected network and host, with optional count")
	}
}

func CmdDot(c *cli.Context) error {
	net, err := loadContext(c)
	if err != nil {
		return err
	}
	var alloc *ipalloc.Allocator
	if c.Bool("addr") {
		alloc, err = loadAddressPlan(c, net)
		if err != nil {
			return err
		}
	}
	dot, err := visual.TopologyToDot(net, alloc)
	if err != nil {
		return err
	}
	return outputString(c.String("output"), []byte(dot))
}

func CmdData(c *cli.Context) error {
	profile := c.String("profile")

	// init CPU profiler
	if profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			return err
		}
		defer func() {
			f.Close()
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	net, err := loadContext(c)
	if err != nil {
		return err
	}
	alloc, err := loadAddressPlan(c, net)
	if err != nil {
		return err
	}
	js, err := visual.GetDataJSON(net, alloc)
	if err != nil {
		return err
	}
	return outputString(c.String("output"), js)
}
