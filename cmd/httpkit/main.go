package main

import (
	"net"
	"os"

	"github.com/benbjohnson/clock"
)

func main() {
	root := newRootCmd(&net.Dialer{}, clock.New())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
