package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pawlock/internal/ipc"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the protection session of a running instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ipc.Stop(appName); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
		fmt.Println("protection stopped")
		return nil
	},
}
