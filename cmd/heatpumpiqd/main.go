package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/catalog"
	"github.com/awaistahir/heatpumpiq/internal/climate"
	"github.com/awaistahir/heatpumpiq/internal/rates"
	"github.com/awaistahir/heatpumpiq/internal/store"
	"github.com/awaistahir/heatpumpiq/internal/uiapi"
	"github.com/spf13/cobra"
)

func main() {
	var port int
	var dbPath string
	var refreshStates string
	var refreshHours int

	rootCmd := &cobra.Command{
		Use:   "heatpumpiqd",
		Short: "HeatPumpIQ HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Set default db path
			if dbPath == "" {
				home, _ := os.UserHomeDir()
				dbPath = filepath.Join(home, ".heatpumpiq", "heatpumpiq.db")
			}

			// Open store
			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading model catalog: %w", err)
			}

			cl, err := climate.Load()
			if err != nil {
				return fmt.Errorf("loading climate tables: %w", err)
			}

			rp, err := rates.New(os.Getenv("EIA_API_KEY"), nil)
			if err != nil {
				return fmt.Errorf("creating rate provider: %w", err)
			}

			// Background rate refresh keeps frequently used states warm
			if refreshStates != "" {
				states := strings.Split(refreshStates, ",")
				for i := range states {
					states[i] = strings.TrimSpace(states[i])
				}
				refresher := rates.NewRefresher(rp, st, states, time.Duration(refreshHours)*time.Hour)
				if err := refresher.Start(); err != nil {
					return fmt.Errorf("starting rate refresher: %w", err)
				}
				defer refresher.Stop()
			}

			// Create server
			srv := uiapi.NewServer(st, cat, cl, rp)

			// Start server
			addr := fmt.Sprintf(":%d", port)
			log.Printf("HeatPumpIQ API server starting on port %d", port)
			log.Printf("Database: %s", dbPath)

			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Database path")
	rootCmd.Flags().StringVar(&refreshStates, "refresh-states", "", "Comma-separated state codes to refresh rates for")
	rootCmd.Flags().IntVar(&refreshHours, "refresh-interval", 24, "Rate refresh interval in hours")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
