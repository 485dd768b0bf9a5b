package main

import (
	"fmt"
	"os"
	"time"

	"github.com/campusdesk/complaint-service/internal/cli"
	"github.com/campusdesk/complaint-service/internal/config"
)

func main() {
	if err := cli.NewRootCommand(config.Load, time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
