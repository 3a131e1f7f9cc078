package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"empath/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: empath-ctl [--socket path] quit|ping")
		cli.PrintDefaults()
	}
	cli.Parse()

	if cli.NArg() != 1 {
		cli.Usage()
		os.Exit(2)
	}

	reply, err := ipc.SendCommand(*socket, cli.Arg(0))
	if err != nil {
		fmt.Println("empath not running:", err)
		os.Exit(1)
	}
	if !reply.OK {
		fmt.Println("error:", reply.Message)
		os.Exit(1)
	}
	if reply.Message != "" {
		fmt.Println(reply.Message)
	}
}
