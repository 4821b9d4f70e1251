package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/unirides/dispatch/core/model"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Driver registry commands",
}

var driversLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered drivers",
	RunE:  runDriversLs,
}

func init() {
	driversCmd.AddCommand(driversLsCmd)
	rootCmd.AddCommand(driversCmd)
}

func runDriversLs(cmd *cobra.Command, args []string) error {
	addr, err := serverAddr()
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/drivers")
	if err != nil {
		return fmt.Errorf("list drivers: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list drivers: %s", resp.Status)
	}
	var drivers []model.Driver
	if err := json.NewDecoder(resp.Body).Decode(&drivers); err != nil {
		return fmt.Errorf("decode drivers: %w", err)
	}
	for _, d := range drivers {
		fmt.Printf("%s\t%s\trating=%.1f\n", d.ID, d.Availability, d.Rating)
	}
	return nil
}
