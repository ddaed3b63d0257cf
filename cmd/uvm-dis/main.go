// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"github.com/lassandro/gouvm/pkg/image"
	"github.com/lassandro/gouvm/pkg/listing"
	"github.com/lassandro/gouvm/pkg/logging"
	"github.com/lassandro/gouvm/pkg/term"
)

const usage = "uvm-dis [-debug] [-mem] filename"

func uvmDis(
	args []string,
	stdout, stderr io.Writer,
	logger *zap.Logger,
	level zap.AtomicLevel,
) int {
	var helpvar, debugvar, memvar, verbosevar bool

	flags := flag.NewFlagSet("uvm-dis", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&helpvar, "help", false, "Displays command usage")
	flags.BoolVar(
		&debugvar, "debug", false,
		"Annotates the listing with the table written by uvm-asm -debug",
	)
	flags.BoolVar(&memvar, "mem", false, "Prints a raw dump of the words")
	flags.BoolVar(&verbosevar, "verbose", false, "Enables debug logging")

	if err := flags.Parse(args); errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 1
	}

	if helpvar {
		fmt.Fprintln(stdout, usage)
		return 0
	}

	args = flags.Args()

	if len(args) != 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	color := false
	if f, ok := stdout.(*os.File); ok {
		color = term.IsTerminal(f)
	}

	logging.SetVerbose(level, verbosevar)

	file, err := os.Open(args[0])

	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	defer file.Close()

	img, err := image.LoadBin(file)

	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", filepath.Base(args[0]), err)
		return 1
	}

	logger.Debug("loaded binary",
		zap.String("input", args[0]),
		zap.Int("words", img.Len()),
	)

	var table *listing.Table

	if debugvar {
		filename := strings.TrimSuffix(args[0], filepath.Ext(args[0])) +
			listing.TABLE_EXT

		if table, err = readTable(filename); err != nil {
			logger.Warn("Error loading listing table",
				zap.String("table", filename),
				zap.Error(err),
			)
		}
	}

	printer := listing.Printer{Out: stdout, Color: color}

	if memvar {
		printer.PrintMem(img.Words)
	} else {
		printer.PrintListing(img.Program, table)
	}

	return 0
}

func readTable(filename string) (*listing.Table, error) {
	file, err := os.Open(filename)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	return listing.ReadTable(file)
}

func syncLogger(logger *zap.Logger) func() {
	return func() {
		_ = logger.Sync()
	}
}

func main() {
	logger, level := logging.New(os.Stderr, term.IsTerminal(os.Stderr))
	atexit.Register(syncLogger(logger))

	atexit.Exit(uvmDis(os.Args[1:], os.Stdout, os.Stderr, logger, level))
}
