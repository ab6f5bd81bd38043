package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	dir         = "nrtopo"
	description = "Inspect 5G test topologies: validation, data path peers and address plans"
)

var (
	Version = "0.1.0"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = dir
	app.Version = Version
	app.Usage = description
	app.Commands = commands

	return app
}
