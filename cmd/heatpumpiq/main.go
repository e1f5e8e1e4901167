package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awaistahir/heatpumpiq/internal/catalog"
	"github.com/awaistahir/heatpumpiq/internal/climate"
	"github.com/awaistahir/heatpumpiq/internal/engine"
	"github.com/awaistahir/heatpumpiq/internal/rates"
	"github.com/awaistahir/heatpumpiq/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dbPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "heatpumpiq",
		Short: "HeatPumpIQ - Size heat pumps and estimate their operating costs",
		Long: `HeatPumpIQ sizes residential heat pump systems from building and
climate data, checks manufacturer capacity curves against design loads,
and projects operating costs against a gas-furnace baseline.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.heatpumpiq/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default is $HOME/.heatpumpiq/heatpumpiq.db)")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(stationsCmd())
	rootCmd.AddCommand(sizeCmd())
	rootCmd.AddCommand(zonesCmd())
	rootCmd.AddCommand(coverageCmd())
	rootCmd.AddCommand(billCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(ratesCmd())
	rootCmd.AddCommand(projectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".heatpumpiq")
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.ReadInConfig()

	if dbPath == "" {
		home, _ := os.UserHomeDir()
		dbPath = filepath.Join(home, ".heatpumpiq", "heatpumpiq.db")
	}
}

// climateFor resolves --zip/--station into a climate profile, printing
// the resolved location to stderr.
func climateFor(zip, stationID string) (climate.ClimateResult, error) {
	cl, err := climate.Load()
	if err != nil {
		return climate.ClimateResult{}, err
	}

	switch {
	case zip != "" && stationID != "":
		return climate.ClimateResult{}, fmt.Errorf("use --zip or --station, not both")
	case zip != "":
		loc, err := cl.ByZip(zip)
		if err != nil {
			return climate.ClimateResult{}, err
		}
		fmt.Fprintf(os.Stderr, "Location: %s, %s (station %s, %.0f miles)\n",
			loc.City, loc.State, loc.Station.ID, loc.DistanceMiles)
		if loc.Approximate {
			fmt.Fprintln(os.Stderr, "Warning: nearest station is over 30 miles away; climate data is approximate")
		}
		return loc.Profile, nil
	case stationID != "":
		return cl.ProfileFor(stationID)
	default:
		return climate.ClimateResult{}, fmt.Errorf("--zip or --station is required")
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List the bundled weather stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := climate.Load()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-18s %-24s %-5s %-5s %10s\n", "ID", "NAME", "ST", "ZONE", "DESIGN °F")
			fmt.Fprintln(w, "-----------------------------------------------------------------")
			for _, s := range cl.Stations() {
				fmt.Fprintf(w, "%-18s %-24s %-5s %-5s %10.0f\n",
					s.ID, s.Name, s.State, s.ClimateZone, s.HeatingDesignTempF)
			}
			return nil
		},
	}
}

func sizeCmd() *cobra.Command {
	var (
		sqft      float64
		buildYear int
		zip       string
		stationID string
		humidity  float64
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size a heat pump for a whole building",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := climateFor(zip, stationID)
			if err != nil {
				return err
			}

			b := engine.BuildingProfile{
				SquareFeet: sqft,
				BuildYear:  buildYear,
				Climate:    profile.ClimateProfile,
			}
			if cmd.Flags().Changed("humidity") {
				b.HumidityAdjustment = &humidity
			}

			load, err := engine.Size(b)
			if err != nil {
				return err
			}

			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			models, err := cat.Recommend(load.HeatingBTU)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"load":               load,
				"recommended_models": models,
			})
		},
	}

	cmd.Flags().Float64VarP(&sqft, "sqft", "s", 0, "Conditioned floor area in square feet (required)")
	cmd.Flags().IntVarP(&buildYear, "year", "y", 0, "Year the building was built (required)")
	cmd.Flags().StringVarP(&zip, "zip", "z", "", "5-digit ZIP code")
	cmd.Flags().StringVar(&stationID, "station", "", "Weather station id (see 'heatpumpiq stations')")
	cmd.Flags().Float64Var(&humidity, "humidity", 0.10, "Latent load adjustment for humid climates (0.10-0.15)")

	cmd.MarkFlagRequired("sqft")
	cmd.MarkFlagRequired("year")

	return cmd
}

func zonesCmd() *cobra.Command {
	var (
		zonesFile string
		zip       string
		stationID string
	)

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Aggregate per-zone loads and recommend a system layout",
		Long: `Reads a JSON array of zone definitions and produces per-zone loads,
a diversity-adjusted total, and a single-system or multi-head layout.
Pass '-' to read the zone list from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := climateFor(zip, stationID)
			if err != nil {
				return err
			}

			var data []byte
			if zonesFile == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(zonesFile)
			}
			if err != nil {
				return fmt.Errorf("reading zones: %w", err)
			}

			var zones []engine.Zone
			if err := json.Unmarshal(data, &zones); err != nil {
				return fmt.Errorf("parsing zones: %w", err)
			}

			result, err := engine.Aggregate(zones, profile.ClimateProfile)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVarP(&zonesFile, "file", "f", "", "JSON file with the zone list, or '-' for stdin (required)")
	cmd.Flags().StringVarP(&zip, "zip", "z", "", "5-digit ZIP code")
	cmd.Flags().StringVar(&stationID, "station", "", "Weather station id")

	cmd.MarkFlagRequired("file")

	return cmd
}

func coverageCmd() *cobra.Command {
	var (
		modelID    string
		loadBTU    float64
		zip        string
		stationID  string
		designTemp float64
		existing   string
	)

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Check a model's capacity curve against a design load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			model, err := cat.Get(modelID)
			if err != nil {
				return err
			}

			temp := designTemp
			if !cmd.Flags().Changed("design-temp") {
				profile, err := climateFor(zip, stationID)
				if err != nil {
					return err
				}
				temp = profile.DesignTempF
			}

			coverage, err := engine.Coverage(model, temp, loadBTU)
			if err != nil {
				return err
			}

			out := map[string]any{
				"model":    model,
				"coverage": coverage,
			}
			if rec := engine.RecommendBackupHeat(coverage.BackupHeatBTU, engine.BackupHeatType(existing)); rec != nil {
				out["backup_heat"] = rec
			}
			return printJSON(out)
		},
	}

	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Catalog model id (required)")
	cmd.Flags().Float64VarP(&loadBTU, "load", "l", 0, "Design heating load in BTU/hr (required)")
	cmd.Flags().StringVarP(&zip, "zip", "z", "", "5-digit ZIP code")
	cmd.Flags().StringVar(&stationID, "station", "", "Weather station id")
	cmd.Flags().Float64Var(&designTemp, "design-temp", 0, "Explicit 99% design temperature in °F")
	cmd.Flags().StringVar(&existing, "existing-heat", "", "Existing backup system: electric_strip, gas_furnace, oil_boiler")

	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("load")

	return cmd
}

func billCmd() *cobra.Command {
	var (
		modelID    string
		heatingBTU float64
		zip        string
		stationID  string
		state      string
		gasPrice   float64
		years      int
	)

	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Project operating costs against a gas-furnace baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			model, err := cat.Get(modelID)
			if err != nil {
				return err
			}

			profile, err := climateFor(zip, stationID)
			if err != nil {
				return err
			}

			if state == "" {
				return fmt.Errorf("--state is required for the electricity rate lookup")
			}
			rp, err := rates.New(viper.GetString("eia_api_key"), nil)
			if err != nil {
				return err
			}
			rate, err := rp.ByState(ctx, state)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("gas-price") {
				rate.GasPricePerTherm = &gasPrice
			}
			fmt.Fprintf(os.Stderr, "Electricity: $%.3f/kWh (%s)\n", rate.USDPerKWh, rate.Source)

			load := engine.LoadResult{HeatingBTU: heatingBTU}
			costs, err := engine.Project(load, model, profile.ClimateProfile, rate, years)
			if err != nil {
				return err
			}
			return printJSON(costs)
		},
	}

	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Catalog model id (required)")
	cmd.Flags().Float64VarP(&heatingBTU, "load", "l", 0, "Design heating load in BTU/hr (required)")
	cmd.Flags().StringVarP(&zip, "zip", "z", "", "5-digit ZIP code")
	cmd.Flags().StringVar(&stationID, "station", "", "Weather station id")
	cmd.Flags().StringVar(&state, "state", "", "Two-letter state code for the electricity rate (required)")
	cmd.Flags().Float64Var(&gasPrice, "gas-price", 0, "Gas price in $/therm for the baseline comparison")
	cmd.Flags().IntVar(&years, "years", 10, "Projection horizon in years")

	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("load")
	cmd.MarkFlagRequired("state")

	return cmd
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Browse the heat pump model catalog",
	}

	cmd.AddCommand(modelsListCmd())
	cmd.AddCommand(modelsRecommendCmd())

	return cmd
}

func modelsListCmd() *cobra.Command {
	var (
		brand    string
		minBTU   float64
		maxBTU   float64
		minHSPF2 float64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			models := cat.List(catalog.Filter{
				Brand:    brand,
				MinBTU:   minBTU,
				MaxBTU:   maxBTU,
				MinHSPF2: minHSPF2,
			})

			if len(models) == 0 {
				fmt.Println("No models match the filter")
				return nil
			}

			fmt.Printf("%-24s %-12s %8s %6s %8s\n", "ID", "BRAND", "BTU", "HSPF2", "PRICE")
			fmt.Println("----------------------------------------------------------------")
			for _, m := range models {
				fmt.Printf("%-24s %-12s %8.0f %6.1f %8.0f\n",
					m.ID, m.Brand, m.RatedCapacityBTU, m.RatedHSPF2, m.PriceUSD)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&brand, "brand", "b", "", "Filter by brand")
	cmd.Flags().Float64Var(&minBTU, "min-btu", 0, "Minimum rated capacity")
	cmd.Flags().Float64Var(&maxBTU, "max-btu", 0, "Maximum rated capacity")
	cmd.Flags().Float64Var(&minHSPF2, "min-hspf2", 0, "Minimum HSPF2 rating")

	return cmd
}

func modelsRecommendCmd() *cobra.Command {
	var targetBTU float64

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend models for a sizing target",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			models, err := cat.Recommend(targetBTU)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Fprintf(os.Stderr, "No catalog model within 20%% of %.0f BTU\n", targetBTU)
				return nil
			}
			return printJSON(models)
		},
	}

	cmd.Flags().Float64VarP(&targetBTU, "target", "t", 0, "Target heating load in BTU/hr (required)")
	cmd.MarkFlagRequired("target")

	return cmd
}

func ratesCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Look up the residential electricity rate for a state",
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := rates.New(viper.GetString("eia_api_key"), nil)
			if err != nil {
				return err
			}
			info, err := rp.ByState(context.Background(), state)
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}

	cmd.Flags().StringVarP(&state, "state", "s", "", "Two-letter state code (required)")
	cmd.MarkFlagRequired("state")

	return cmd
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage saved sizing projects",
	}

	cmd.AddCommand(projectSaveCmd())
	cmd.AddCommand(projectListCmd())
	cmd.AddCommand(projectShowCmd())
	cmd.AddCommand(projectDeleteCmd())

	return cmd
}

func projectSaveCmd() *cobra.Command {
	var (
		name      string
		sqft      float64
		buildYear int
		zip       string
		stationID string
		modelID   string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Size a building and save the result as a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := climateFor(zip, stationID)
			if err != nil {
				return err
			}

			building := engine.BuildingProfile{
				SquareFeet: sqft,
				BuildYear:  buildYear,
				Climate:    profile.ClimateProfile,
			}
			load, err := engine.Size(building)
			if err != nil {
				return err
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			p := &store.Project{
				Name:      name,
				ZipCode:   zip,
				StationID: stationID,
				Building:  building,
				ModelID:   modelID,
				Load:      &load,
			}
			id, err := st.SaveProject(p)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Saved project %q\n", name)
			fmt.Printf("%s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (required)")
	cmd.Flags().Float64VarP(&sqft, "sqft", "s", 0, "Conditioned floor area in square feet (required)")
	cmd.Flags().IntVarP(&buildYear, "year", "y", 0, "Year the building was built (required)")
	cmd.Flags().StringVarP(&zip, "zip", "z", "", "5-digit ZIP code")
	cmd.Flags().StringVar(&stationID, "station", "", "Weather station id")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Catalog model id to associate")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("sqft")
	cmd.MarkFlagRequired("year")

	return cmd
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			projects, err := st.ListProjects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No saved projects")
				return nil
			}

			fmt.Printf("%-36s %-28s %8s %s\n", "ID", "NAME", "SQFT", "UPDATED")
			fmt.Println("--------------------------------------------------------------------------------")
			for _, p := range projects {
				fmt.Printf("%-36s %-28s %8.0f %s\n",
					p.ID, p.Name, p.Building.SquareFeet, p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := st.GetProject(args[0])
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteProject(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted project %s\n", args[0])
			return nil
		},
	}
}
