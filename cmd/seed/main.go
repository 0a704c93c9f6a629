package main

import (
	"fmt"
	"os"

	seedcmd "github.com/CobrasOrg/auth-service/internal/tools/seed"
)

func main() {
	if err := seedcmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
