// Package main is the entry point of the bootup CLI.
package main

import (
	"github.com/huangsam/bootup/cmd"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	if closeErr := cmd.CloseFaultLog(); closeErr != nil {
		contract.LogWarn("Failed to close fault log", closeErr)
	}
	iocache.CloseStores()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Failed to stop profiling", profErr)
	}

	if err != nil {
		contract.LogFatal("Error running command", err)
	}
}
