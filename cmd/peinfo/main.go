// Command peinfo dumps the structure of a PE/COFF object file: its
// headers, sections, symbols, import/export directories, and (for managed
// images) CLI metadata tables.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xyproto/peparse/pe"
)

var (
	cfg config
	log *logrus.Logger
)

func main() {
	cfg = loadConfig()
	log = newLogger(cfg)
	if !cfg.noColor {
		enableColorSupport()
	}

	root := &cobra.Command{
		Use:   "peinfo",
		Short: "Inspect PE/COFF object files and CLI metadata",
	}

	root.AddCommand(
		headersCommand(),
		sectionsCommand(),
		symbolsCommand(),
		importsCommand(),
		exportsCommand(),
		cliCommand(),
	)

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("peinfo failed")
		os.Exit(1)
	}
}

// openImage reads and parses the file named by path, returning an error
// rather than exiting so callers can decide how to fail.
func openImage(path string) (*pe.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, err := pe.Open(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return img, nil
}

func requireOneArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s expects exactly one file argument", cmd.Name())
	}
	return nil
}
