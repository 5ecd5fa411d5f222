package ingest

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/procurement-nlq/internal/common"
	"github.com/dtnitsch/procurement-nlq/pkg/ingest"
	"github.com/dtnitsch/procurement-nlq/pkg/mongostore"
	"github.com/dtnitsch/procurement-nlq/pkg/profile"
	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

// ProfileAction summarizes a CSV file without touching the database.
func ProfileAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	csvPath := c.String("csv")
	if csvPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No CSV file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq profile --csv purchase-order-data.csv`)
		os.Exit(1)
	}

	logger.Info("profiling CSV", "path", csvPath)
	report, err := profile.ProfileCSV(csvPath, c.Int("top-values"))
	if err != nil {
		logger.Error("failed to profile CSV", "error", err)
		os.Exit(2)
	}

	if outPath := c.String("output"); outPath != "" {
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal profile report: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write profile report: %w", err)
		}
		fmt.Printf("Profile written to: %s\n", outPath)
		return nil
	}
	return common.PrintYAML(report)
}

// LoadAction drops the collection and reloads it from a CSV file.
func LoadAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	common.LoadEnv(logger)

	csvPath := c.String("csv")
	if csvPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No CSV file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq load --csv purchase-order-data.csv`)
		fmt.Fprintln(os.Stderr, `  procurement-nlq load --csv purchase-order-data.csv --max-rows 50000`)
		os.Exit(1)
	}

	cfg, err := mongostore.ConfigFromEnv()
	if err != nil {
		logger.Error("missing MongoDB configuration", "error", err)
		os.Exit(2)
	}

	store, err := mongostore.Connect(c.Context, cfg)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(2)
	}
	defer store.Close(c.Context)

	loader := ingest.NewLoader(store, logger, c.Int("max-rows"), c.Int("batch-size"))
	inserted, err := loader.Load(c.Context, csvPath)
	if err != nil {
		logger.Error("load failed", "error", err, "inserted", inserted)
		os.Exit(2)
	}

	fmt.Printf("Loaded %d documents into %s.%s\n", inserted, schema.DatabaseName, schema.CollectionName)
	return nil
}
