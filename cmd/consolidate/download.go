package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// downloadAction copies history from a remote provider into a parquet file
// readable by the duckdb history source.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	provider := history.Kind(cmd.String("provider"))

	assetClass := types.AssetClassEquity
	if provider == history.KindBinance {
		assetClass = types.AssetClassCrypto
	}

	params := history.DownloadParams{
		Provider:   provider,
		APIKey:     os.Getenv("POLYGON_API_KEY"),
		Instrument: types.NewInstrument(cmd.String("exchange"), cmd.String("symbol"), assetClass),
		Period:     cmd.String("period"),
		From:       cmd.Timestamp("start").UTC(),
		To:         cmd.Timestamp("end").UTC(),
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", params.Instrument.Symbol)),
		progressbar.OptionShowCount(),
	)

	samples, err := history.Download(ctx, params, log.Named("download"), func() { _ = bar.Add(1) })
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	_ = bar.Finish()

	out := cmd.String("out")
	if err := writeSamples(out, samples); err != nil {
		return err
	}

	fmt.Printf("\nWrote %d samples to %s\n", len(samples), out)

	return nil
}
