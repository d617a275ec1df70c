package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

var appliancesCmd = &cobra.Command{
	Use:   "appliances",
	Short: "Inspect and manage the appliance list",
}

var appliancesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all appliances known to the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var apps []types.Appliance
		if err := getJSON("/api/appliances", &apps); err != nil {
			return err
		}
		for _, app := range apps {
			flex := "fixed"
			if app.Flexible {
				flex = "flexible"
			}
			fmt.Printf("%3d  %s %-18s %7.0fW  %-8s  current=%v optimal=%v\n",
				app.ID, app.Emoji, app.Name, app.PowerW, flex, app.CurrentHours, app.OptimalHours)
		}
		return nil
	},
}

var (
	addName     string
	addPower    float64
	addFlexible bool
	addDuration float64
	addHours    []int
)

var appliancesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an appliance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := json.Marshal(types.Appliance{
			Name:         addName,
			PowerW:       addPower,
			Flexible:     addFlexible,
			RunDuration:  addDuration,
			CurrentHours: addHours,
		})
		if err != nil {
			return err
		}
		var added types.Appliance
		if err := postJSON("/api/appliances", bytes.NewReader(body), &added); err != nil {
			return err
		}
		fmt.Printf("Added %s %s (id %d)\n", added.Emoji, added.Name, added.ID)
		return nil
	},
}

var appliancesHoursCmd = &cobra.Command{
	Use:   "hours <id> <hour>...",
	Short: "Replace an appliance's usage hours",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req struct {
			ID    int   `json:"id"`
			Hours []int `json:"hours"`
		}
		if _, err := fmt.Sscanf(args[0], "%d", &req.ID); err != nil {
			return fmt.Errorf("invalid appliance id %q", args[0])
		}
		for _, arg := range args[1:] {
			var h int
			if _, err := fmt.Sscanf(arg, "%d", &h); err != nil {
				return fmt.Errorf("invalid hour %q", arg)
			}
			req.Hours = append(req.Hours, h)
		}
		body, err := json.Marshal(req)
		if err != nil {
			return err
		}
		var app types.Appliance
		if err := postJSON("/api/appliances/hours", bytes.NewReader(body), &app); err != nil {
			return err
		}
		fmt.Printf("Updated %s: hours now %s\n", app.Name, formatHours(app.CurrentHours))
		return nil
	},
}

func formatHours(hours []int) string {
	if len(hours) == 0 {
		return "(none)"
	}
	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = types.TimeLabel(h)
	}
	return strings.Join(labels, ", ")
}

func init() {
	rootCmd.AddCommand(appliancesCmd)
	appliancesCmd.AddCommand(appliancesListCmd)
	appliancesCmd.AddCommand(appliancesAddCmd)
	appliancesCmd.AddCommand(appliancesHoursCmd)

	appliancesAddCmd.Flags().StringVar(&addName, "name", "", "Appliance name (required)")
	appliancesAddCmd.Flags().Float64Var(&addPower, "power", 0, "Power draw in watts (required)")
	appliancesAddCmd.Flags().BoolVar(&addFlexible, "flexible", true, "Whether the appliance can be rescheduled")
	appliancesAddCmd.Flags().Float64Var(&addDuration, "duration", 1, "Run duration in hours")
	appliancesAddCmd.Flags().IntSliceVar(&addHours, "hours", nil, "Current usage hours (0-23)")
	_ = appliancesAddCmd.MarkFlagRequired("name")
	_ = appliancesAddCmd.MarkFlagRequired("power")
}
