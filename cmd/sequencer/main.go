package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"stop-sequencing-service/internal/adapters/importer"
	"stop-sequencing-service/internal/adapters/routing"
	"stop-sequencing-service/internal/config"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/ports"
	"stop-sequencing-service/internal/services"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"
)

// sequencer orders the stops of a CSV file from the command line.
func main() {
	config.LoadDotEnv()

	app := cli.NewApp()
	app.Name = "sequencer"
	app.Usage = "order delivery stops for a single vehicle"
	app.Commands = []cli.Command{
		{
			Name:      "optimize",
			Usage:     "read stops from a CSV file and print them in visiting order",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "input, i", Usage: "CSV file with an address column (- for stdin)"},
				cli.Float64Flag{Name: "start-lat", Usage: "latitude of the start location"},
				cli.Float64Flag{Name: "start-lon", Usage: "longitude of the start location"},
				cli.BoolFlag{Name: "round-trip", Usage: "return to the start after the last stop"},
				cli.BoolFlag{Name: "lock-last", Usage: "keep the file's last stop as the final destination"},
				cli.StringFlag{Name: "type", Value: string(domain.OptimizeShortestTime), Usage: "shortest_time, shortest_distance or balanced"},
				cli.StringFlag{Name: "oracle", Value: config.OracleNone, Usage: "route oracle: none, osrm or ors"},
				cli.DurationFlag{Name: "timeout", Value: services.DefaultOracleTimeout, Usage: "route oracle timeout"},
				cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
			},
			Action: optimizeAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type optimizeOptions struct {
	start    *domain.StartLocation
	settings domain.OptimizationSettings
	asJSON   bool
}

func optimizeAction(c *cli.Context) error {
	path := c.String("input")
	if path == "" {
		return cli.NewExitError("--input is required", 2)
	}

	opts := optimizeOptions{
		settings: domain.DefaultOptimizationSettings(),
		asJSON:   c.Bool("json"),
	}
	opts.settings.RoundTrip = c.Bool("round-trip")
	opts.settings.LockLastDestination = c.Bool("lock-last")
	opts.settings.OptimizationType = domain.OptimizationType(c.String("type"))

	if c.IsSet("start-lat") != c.IsSet("start-lon") {
		return cli.NewExitError("--start-lat and --start-lon must be given together", 2)
	}
	if c.IsSet("start-lat") {
		opts.start = &domain.StartLocation{
			Address: "start",
			Coordinates: domain.Coordinates{
				Lat: c.Float64("start-lat"),
				Lon: c.Float64("start-lon"),
			},
		}
	}

	oracle, geocoder, err := cliOracle(c.String("oracle"))
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	in := io.Reader(os.Stdin)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		defer f.Close()
		in = f
	}

	opt := services.NewOptimizer(oracle, c.Duration("timeout"))
	if err := runOptimize(context.Background(), opt, importer.NewCSVImporter(geocoder), opts, in, os.Stdout, os.Stderr); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func cliOracle(name string) (ports.RouteOracle, ports.Geocoder, error) {
	switch name {
	case config.OracleNone:
		return nil, nil, nil
	case config.OracleOSRM:
		return routing.NewOSRMProvider(config.Get("OSRM_BASE_URL", "")), nil, nil
	case config.OracleORS:
		ors, err := routing.NewORSProvider(config.Get("ORS_API_KEY", ""), config.Get("ORS_BASE_URL", ""), nil)
		if err != nil {
			return nil, nil, fmt.Errorf("ors oracle: %w (set ORS_API_KEY)", err)
		}
		return ors, ors, nil
	}
	return nil, nil, fmt.Errorf("unknown oracle %q (want none, osrm or ors)", name)
}

type jsonStop struct {
	Sequence int     `json:"sequence"`
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type jsonResult struct {
	State           string     `json:"state"`
	Stops           []jsonStop `json:"stops"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	TotalMinutes    float64    `json:"total_minutes"`
	Estimated       bool       `json:"estimated"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// runOptimize imports stops from in, orders them and writes the result to out.
// Rows that fail to import are reported on errOut and skipped.
func runOptimize(ctx context.Context, opt *services.Optimizer, im *importer.CSVImporter, opts optimizeOptions, in io.Reader, out, errOut io.Writer) error {
	imported, err := im.Import(ctx, in)
	if err != nil {
		return err
	}
	for _, e := range imported.Errors {
		fmt.Fprintf(errOut, "line %d: %s: %s\n", e.Line, e.Address, e.Err)
	}

	stops := make([]domain.Stop, 0, len(imported.Stops))
	for i, si := range imported.Stops {
		s := si.ToStop(opts.settings.DefaultServiceTime)
		s.ID = strconv.Itoa(i + 1)
		stops = append(stops, s)
	}

	started := time.Now()
	res, err := opt.Optimize(ctx, services.OptimizeRequest{Stops: stops, Start: opts.start, Settings: opts.settings})
	if err != nil {
		return err
	}
	stats := services.EstimateRouteStats(opts.start, res.Stops, opts.settings, res.TotalDistanceKm, res.TotalDurationMin)

	if opts.asJSON {
		jr := jsonResult{
			State:           string(res.State),
			Stops:           make([]jsonStop, 0, len(res.Stops)),
			TotalDistanceKm: stats.TotalDistanceKm,
			TotalMinutes:    stats.TotalMinutes,
			Estimated:       stats.Estimated,
			Warnings:        res.Warnings,
		}
		for _, s := range res.Stops {
			jr.Stops = append(jr.Stops, jsonStop{
				Sequence: s.Sequence, ID: s.ID, Name: s.Name, Address: s.Address,
				Lat: s.Coordinates.Lat, Lng: s.Coordinates.Lon,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jr)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tNAME\tADDRESS\tLAT\tLNG")
	for _, s := range res.Stops {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.6f\t%.6f\n", s.Sequence, s.ID, s.Name, s.Address, s.Coordinates.Lat, s.Coordinates.Lon)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	estimate := ""
	if stats.Estimated {
		estimate = " (straight-line estimate)"
	}
	fmt.Fprintf(out, "\nstate=%s stops=%d distance=%.2fkm duration=%.0fmin%s in %s\n",
		res.State, stats.TotalStops, stats.TotalDistanceKm, stats.TotalMinutes, estimate, time.Since(started).Round(time.Millisecond))
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	return nil
}
