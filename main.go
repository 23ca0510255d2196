package main

import (
	"fmt"
	"os"

	"fjacquet/pgn-ratings/cmd/batch"
	"fjacquet/pgn-ratings/cmd/histogram"
	"fjacquet/pgn-ratings/cmd/root"
)

func init() {
	root.Cmd.AddCommand(histogram.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
