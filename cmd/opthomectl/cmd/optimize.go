package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run an optimization and print the resulting schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Running optimization...")
		var sched types.OptimizedSchedule
		if err := postJSON("/api/optimize", nil, &sched); err != nil {
			return err
		}
		printSchedule(sched)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the current optimized schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var sched types.OptimizedSchedule
		if err := getJSON("/api/schedule", &sched); err != nil {
			return err
		}
		printSchedule(sched)
		return nil
	},
}

func printSchedule(sched types.OptimizedSchedule) {
	fmt.Printf("Status: %s (%s)\n", sched.OptimizationStatus, sched.OptimizationMethod)
	if sched.Savings != nil {
		fmt.Printf("Savings: %.2f/day  %.2f/month  %.2f/year\n",
			sched.Savings.Daily, sched.Savings.Monthly, sched.Savings.Yearly)
	}
	for key, app := range sched.OptimizedAppliances {
		fmt.Printf("  %-20s -> %s\n", key, formatHours(app.OptimizedHours))
	}
	for _, rec := range sched.Recommendations {
		fmt.Printf("%s %s\n", rec.Emoji, rec.Period)
		for _, line := range rec.Appliances {
			fmt.Printf("   - %s\n", line)
		}
	}
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(scheduleCmd)
}
