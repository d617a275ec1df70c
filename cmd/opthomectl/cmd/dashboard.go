package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the hourly cost table and savings summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var dash struct {
			Records []types.HourlyRecord `json:"records"`
			Savings types.SavingsSummary `json:"savings"`
		}
		if err := getJSON("/api/dashboard", &dash); err != nil {
			return err
		}

		fmt.Printf("%-6s %8s %8s %9s %9s %9s\n", "hour", "grid", "solar", "standard", "optimal", "battery%")
		for _, r := range dash.Records {
			optimal := r.OptimalCost
			if r.OptimizedCost != nil {
				optimal = *r.OptimizedCost
			}
			fmt.Printf("%-6s %8.2f %8.2f %9.2f %9.2f %9.1f\n",
				r.Time, r.GridCost, r.SolarProduction, r.StandardCost, optimal, r.BatteryCharge)
		}
		fmt.Printf("\nStandard cost: %.2f  Savings: %.2f (%s%%)\n",
			dash.Savings.TotalStandardCost, dash.Savings.SavingsAmount, dash.Savings.SavingsPercentage)
		return nil
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List sites with stored state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var sites []string
		if err := getJSON("/api/list/sites", &sites); err != nil {
			return err
		}
		for _, site := range sites {
			fmt.Println(site)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(sitesCmd)
}
