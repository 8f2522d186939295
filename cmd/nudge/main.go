package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "nudge",
		Short: "Nudge - progressive-interval reminder",
		Long: `Nudge opens a target URL on a schedule of progressively increasing
intervals until a session duration elapses, optionally playing a sound and
logging each reminder to a history file.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
