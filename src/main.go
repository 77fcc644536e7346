package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

func main() {
	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "flight delay classification",
		Subcommands: []*commander.Command{
			RunCmd(),
			WatchCmd(),
			ScheduleCmd(),
		},
		Flag: *flag.NewFlagSet("flightdelay", flag.ExitOnError),
	}

	// 不带子命令时执行一次
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"run"}
	}

	if err := cmd.Dispatch(args); err != nil {
		fmt.Fprintf(os.Stderr, "**err**: %v\n", err)
		os.Exit(1)
	}
}
