// Package histogram implements the command that builds rating histograms
// from a PGN stream.
package histogram

import (
	"fmt"

	"fjacquet/pgn-ratings/cmd/common"
	"fjacquet/pgn-ratings/cmd/root"
	"fjacquet/pgn-ratings/internal/fileutils"
	"fjacquet/pgn-ratings/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the histogram command
var Cmd = NewCommand()

// NewCommand builds the histogram command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "histogram [FILE]",
		Short: "Build per-category rating histograms from a PGN file",
		Long: `Read every game of FILE (or stdin when FILE is omitted or "-"), classify it
into a speed category from its TimeControl header and count the WhiteElo and
BlackElo ratings of each category. Files ending in .gz are decompressed.

One "<category>.data" file of value,count rows is written per category and a
summary line per category is printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}
}

func run(cmd *cobra.Command, args []string) (err error) {
	c, err := root.ContainerFrom(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing run store: %w", cerr)
		}
	}()

	path := fileutils.StdinName
	if len(args) == 1 {
		path = args[0]
	}

	in, source, err := fileutils.OpenInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	log := c.GetLogger()
	log.Info("Building rating histograms", logging.Field{Key: logging.FieldInputFile, Value: source})

	result, err := common.ProcessStream(cmd.Context(), c, in, source, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	log.Info("Histograms written",
		logging.Field{Key: logging.FieldGame, Value: result.Games},
		logging.Field{Key: logging.FieldCount, Value: len(result.Files)})
	return nil
}
