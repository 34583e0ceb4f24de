package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via
// go build -ldflags "-X main.Version=1.2.3" ./cmd
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the PawLock version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pawlock %s\n", Version)
	},
}
