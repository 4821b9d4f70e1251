package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/unirides/dispatch/config"
)

var (
	rideRiderID string
	ridePickup  []float64
	rideDest    []float64
	rideFare    float64
	rideAddr    string
)

var rideCmd = &cobra.Command{
	Use:   "ride",
	Short: "Submit a test ride request to a running coordinator",
	RunE:  runRide,
}

func init() {
	rideCmd.Flags().StringVar(&rideRiderID, "rider", "test-rider", "rider identifier")
	rideCmd.Flags().Float64SliceVar(&ridePickup, "pickup", []float64{6.5244, 3.3792}, "pickup lat,lng")
	rideCmd.Flags().Float64SliceVar(&rideDest, "destination", []float64{6.4654, 3.4064}, "destination lat,lng")
	rideCmd.Flags().Float64Var(&rideFare, "fare", 1000, "estimated fare")
	rideCmd.Flags().StringVar(&rideAddr, "addr", "", "coordinator address (defaults to server.addr from config)")
	rootCmd.AddCommand(rideCmd)
}

func serverAddr() (string, error) {
	if rideAddr != "" {
		return rideAddr, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	addr := cfg.Server.Addr
	if addr != "" && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return addr, nil
}

func runRide(cmd *cobra.Command, args []string) error {
	if len(ridePickup) != 2 || len(rideDest) != 2 {
		return fmt.Errorf("pickup and destination must be lat,lng pairs")
	}
	addr, err := serverAddr()
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]any{
		"rider_id":         rideRiderID,
		"pickup":           map[string]float64{"lat": ridePickup[0], "lng": ridePickup[1]},
		"destination":      map[string]float64{"lat": rideDest[0], "lng": rideDest[1]},
		"estimated_amount": rideFare,
	})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+addr+"/api/rides", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit ride: %w", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("submit ride: %s: %s", resp.Status, out)
	}
	fmt.Println(string(bytes.TrimSpace(out)))
	return nil
}
