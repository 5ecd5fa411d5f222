package db

import (
	"fmt"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/procurement-nlq/pkg/db"
)

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		// No run ID provided, use latest
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'procurement-nlq translate --questions ...' first")
		}
		return runs[0].RunID, nil
	}

	// Parse provided run ID
	var runID int64
	_, err := fmt.Sscanf(c.Args().First(), "%d", &runID)
	if err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
