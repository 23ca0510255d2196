// Package batch handles batch processing of files
package batch

import (
	"fmt"

	"fjacquet/pgn-ratings/cmd/common"
	"fjacquet/pgn-ratings/cmd/root"
	"fjacquet/pgn-ratings/internal/batch"
	"fjacquet/pgn-ratings/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the batch command
var Cmd = NewCommand()

// NewCommand builds the batch command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch DIR",
		Short: "Batch process every PGN file of a directory into one set of histograms",
		Long: `Batch process all .pgn and .pgn.gz files of an input directory, in lexical
order, as a single stream of games. One set of category files and one set of
summary lines is produced for the whole directory.

Example:
  pgn-ratings batch archive/ -o histograms/`,
		Args: cobra.ExactArgs(1),
		RunE: batchFunc,
	}
}

func batchFunc(cmd *cobra.Command, args []string) (err error) {
	c, err := root.ContainerFrom(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing run store: %w", cerr)
		}
	}()

	inputDir := args[0]
	logger := c.GetLogger()

	files, err := batch.Discover(inputDir, logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PGN files found in %s", inputDir)
	}

	chain := batch.NewChain(files, logger)
	defer func() { _ = chain.Close() }()

	result, err := common.ProcessStream(cmd.Context(), c, chain, inputDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info("Batch processing completed",
		logging.Field{Key: logging.FieldCount, Value: len(files)},
		logging.Field{Key: logging.FieldGame, Value: result.Games})
	return nil
}
