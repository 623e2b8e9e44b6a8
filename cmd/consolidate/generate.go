package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-consolidator/internal/config"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/internal/version"
	"github.com/rxtech-lab/argo-consolidator/mocks"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaName       = "consolidator-config.json"
	sampleConfigName = "consolidator-config.yaml"
)

// schemaAction writes the config JSON schema and, when missing, a sample config.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("out")

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	schemaPath := filepath.Join(dir, schemaName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	sampleConfigPath := filepath.Join(dir, sampleConfigName)
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(sampleConfig())
		if err != nil {
			return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)
		if err := os.WriteFile(sampleConfigPath, yamlBytes, 0644); err != nil {
			return fmt.Errorf("failed to write sample config to file: %w", err)
		}

		fmt.Printf("Sample config generated at %s\n", sampleConfigPath)
	}

	fmt.Printf("Schema generated at %s\n", schemaPath)

	return nil
}

func sampleConfig() config.Config {
	return config.Config{
		Version:       version.GetVersion(),
		DefaultPeriod: "1d",
		WarmUp:        true,
		History: config.HistoryConfig{
			Kind:      "duckdb",
			Path:      "./data/samples.parquet",
			Aggregate: true,
			Calendar:  "xnys",
		},
		Sink: config.SinkConfig{
			Enabled: true,
			Path:    "./data/bars.parquet",
		},
		Registrations: []config.Registration{
			{
				Exchange:   "NYSE",
				Symbol:     "SPY",
				AssetClass: string(types.AssetClassEquity),
				Indicator:  string(types.IndicatorTypeSMA),
				Params:     map[string]any{"period": 20},
			},
			{
				Exchange:   "NYSE",
				Symbol:     "SPY",
				AssetClass: string(types.AssetClassEquity),
				Indicator:  string(types.IndicatorTypeVWAP),
				Params:     map[string]any{"period": 20},
			},
		},
	}
}

// generateAction writes synthetic minute samples in the layout read by the duckdb history source.
func generateAction(_ context.Context, cmd *cli.Command) error {
	config := mocks.DefaultConfig()
	config.StartTime = cmd.Timestamp("start").UTC()
	config.Count = int(cmd.Int("days")) * 1440

	var instruments []types.Instrument
	for _, symbol := range cmd.StringSlice("symbol") {
		instruments = append(instruments, types.NewInstrument("", symbol, types.AssetClassEquity))
	}

	samples := mocks.NewDataGenerator(cmd.Int64("seed")).GenerateMultiInstrument(instruments, config)

	out := cmd.String("out")
	if err := writeSamples(out, samples); err != nil {
		return err
	}

	fmt.Printf("Wrote %d samples to %s\n", len(samples), out)

	return nil
}

// writeSamples exports samples to a parquet file with the columns
// time, symbol, open, high, low, close and volume.
func writeSamples(path string, samples []types.MarketData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create output directory", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE market_data (time TIMESTAMP, symbol VARCHAR, open DOUBLE, high DOUBLE, low DOUBLE, close DOUBLE, volume DOUBLE)`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO market_data VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	for _, sample := range samples {
		_, err := stmt.Exec(
			sample.Time.UTC(),
			sample.Instrument.Symbol,
			sample.Open.InexactFloat64(),
			sample.High.InexactFloat64(),
			sample.Low.InexactFloat64(),
			sample.Close.InexactFloat64(),
			sample.Volume.InexactFloat64(),
		)
		if err != nil {
			stmt.Close()
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert sample", err)
		}
	}

	stmt.Close()

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export parquet", err)
	}

	return nil
}
