package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pawlock/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the protection state of a running instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, remaining, err := ipc.Status(appName)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		if remaining > 0 {
			fmt.Printf("%s, %s remaining\n", state, remaining)
		} else {
			fmt.Println(state)
		}
		return nil
	},
}
