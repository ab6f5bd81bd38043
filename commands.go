package main

import (
	"github.com/urfave/cli/v2"

	"github.com/cpflat/nrtopo/pkg/ipalloc"
)

var commands = []*cli.Command{
	commandCheck,
	commandPeers,
	commandSubscribers,
	commandAddr,
	commandDot,
	commandData,
}

var flagNetdef = &cli.StringFlag{
	Name:    "netdef",
	Aliases: []string{"n"},
	Usage:   "Specify the network definition file (YAML or JSON).",
	Value:   "netdef.yaml",
}

var flagVerbose = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "Verbose",
}

var flagOutput = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Write to the given file instead of stdout. Existing files are not overwritten.",
}

var flagIPSpace = &cli.StringFlag{
	Name:  "ip-space",
	Usage: "IPv4 address space for automatically allocated networks.",
	Value: ipalloc.DefaultSpace,
}

var flagIPFixed = &cli.StringSliceFlag{
	Name:  "ip-fixed",
	Usage: "Fixed address assignment as network,host,ip. Can be repeated.",
}

var flagGNB = &cli.StringFlag{
	Name:  "gnb",
	Usage: "Only show entries of the given gNB.",
}

var commandCheck = &cli.Command{
	Name:   "check",
	Usage:  "Validate the network definition and report every violation",
	Action: CmdCheck,
	Flags:  []cli.Flag{flagNetdef, flagVerbose},
}

var commandPeers = &cli.Command{
	Name:   "peers",
	Usage:  "Show N3, N9 and N6 peers of UPFs, or N3 peers of a gNB",
	Action: CmdPeers,
	Flags: []cli.Flag{
		flagNetdef,
		&cli.StringFlag{
			Name:  "upf",
			Usage: "Only show the given UPF.",
		},
		flagGNB,
		flagOutput,
		flagVerbose,
	},
}

var commandSubscribers = &cli.Command{
	Name:   "subscribers",
	Usage:  "List subscribers with defaults applied",
	Action: CmdSubscribers,
	Flags: []cli.Flag{
		flagNetdef,
		&cli.BoolFlag{
			Name:  "expand",
			Usage: "List one entry per UE instead of one per subscriber record.",
		},
		flagGNB,
		&cli.BoolFlag{
			Name:  "pair",
			Usage: "Pair every UE with exactly one gNB.",
		},
		flagOutput,
		flagVerbose,
	},
}

var commandAddr = &cli.Command{
	Name:      "addr",
	Usage:     "Show the address plan, or the address of one host",
	ArgsUsage: "[network host [count]]",
	Action:    CmdAddr,
	Flags:     []cli.Flag{flagNetdef, flagIPSpace, flagIPFixed, flagOutput, flagVerbose},
}

var commandDot = &cli.Command{
	Name:   "dot",
	Usage:  "Render the data path graph in DOT",
	Action: CmdDot,
	Flags: []cli.Flag{
		flagNetdef,
		&cli.BoolFlag{
			Name:  "addr",
			Usage: "Annotate links with allocated addresses.",
		},
		flagIPSpace,
		flagIPFixed,
		flagOutput,
		flagVerbose,
	},
}

var commandData = &cli.Command{
	Name:   "data",
	Usage:  "Dump the network, peers and address plan in JSON",
	Action: CmdData,
	Flags: []cli.Flag{
		flagNetdef,
		flagIPSpace,
		flagIPFixed,
		flagOutput,
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Write a CPU profile to the given file.",
		},
		flagVerbose,
	},
}
