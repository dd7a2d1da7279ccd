package main

import (
	"os"

	"github.com/termlog/cirstore/cmd"
	"github.com/termlog/cirstore/utils/log"
)

// This is the launcher for all cirstore services and tools

func main() {
	defer log.Sync()
	if err := cmd.Execute(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
