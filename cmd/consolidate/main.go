package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "consolidate",
		Usage:   "Consolidate raw market data into bars and feed them to warmed-up indicators",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Register the configured indicators, warm them up and replay live samples",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the pipeline config `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "live",
						Aliases: []string{"l"},
						Usage:   "Parquet `FILE` replayed as live samples after warm-up",
					},
					&cli.TimestampFlag{
						Name:  "now",
						Usage: "Fixed clock in RFC3339; overrides the config `now`",
						Config: cli.TimestampConfig{
							Layouts: []string{time.RFC3339, "2006-01-02"},
						},
					},
					&cli.StringFlag{
						Name:    "stream",
						Aliases: []string{"s"},
						Usage:   "WebSocket `URL` of a live JSON sample feed, read until interrupted",
					},
					&cli.DurationFlag{
						Name:  "scan-interval",
						Usage: "How often open bars are closed on the wall clock while streaming",
						Value: time.Second,
					},
					&cli.BoolFlag{
						Name:  "flush",
						Usage: "Close the bars still open when the replay ends",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Enable debug logging",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Write the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output `DIR`",
						Value:   "./config",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "download",
				Usage: "Download historical samples from polygon or binance into a parquet file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "symbol",
						Aliases:  []string{"t"},
						Usage:    "Ticker or trading pair",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "exchange",
						Usage: "Exchange stamped on the samples",
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider (%s or %s); polygon reads POLYGON_API_KEY", history.KindPolygon, history.KindBinance),
						Value:   string(history.KindPolygon),
					},
					&cli.StringFlag{
						Name:  "period",
						Usage: "Sample granularity, e.g. 1m or 1h",
						Value: "1m",
					},
					&cli.TimestampFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "Start date in `YYYY-MM-DD` format",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02", time.RFC3339},
						},
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to now.",
						Value:   time.Now(),
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02", time.RFC3339},
						},
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Parquet output `FILE`",
						Required: true,
					},
				},
				Action: downloadAction,
			},
			{
				Name:  "generate",
				Usage: "Write synthetic minute samples to a parquet file",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "symbol",
						Aliases: []string{"s"},
						Usage:   "Symbols to generate",
						Value:   []string{"SPY"},
					},
					&cli.TimestampFlag{
						Name:  "start",
						Usage: "First day in `YYYY-MM-DD` format",
						Value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of trading sessions",
						Value: 30,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed for the price paths",
						Value: 42,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Parquet output `FILE`",
						Required: true,
					},
				},
				Action: generateAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
