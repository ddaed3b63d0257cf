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

	"github.com/lassandro/gouvm/pkg/assembler"
	"github.com/lassandro/gouvm/pkg/listing"
	"github.com/lassandro/gouvm/pkg/logging"
	"github.com/lassandro/gouvm/pkg/source"
	"github.com/lassandro/gouvm/pkg/term"
)

const usage = "uvm-asm [-debug] [-test] [-format json|yaml] [-workers n] [-out outfile] filename"

type config struct {
	help    bool
	debug   bool
	test    bool
	verbose bool
	out     string
	format  string
	workers int
}

func parseFlags(args []string, stderr io.Writer) (*config, []string, error) {
	var cfg config

	flags := flag.NewFlagSet("uvm-asm", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.BoolVar(&cfg.help, "help", false, "Displays command usage")
	flags.BoolVar(
		&cfg.debug, "debug", false,
		"Specifies whether to write a listing table next to the output. "+
			"The table will use the output filename with extension "+
			"'"+listing.TABLE_EXT+"'",
	)
	flags.BoolVar(
		&cfg.test, "test", false,
		"Prints the internal representation and the encoded words",
	)
	flags.BoolVar(&cfg.verbose, "verbose", false, "Enables debug logging")
	flags.StringVar(
		&cfg.out, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flags.StringVar(
		&cfg.format, "format", "",
		"Source format, json or yaml. Defaults to the input extension",
	)
	flags.IntVar(
		&cfg.workers, "workers", 1,
		"Number of goroutines used to validate and encode instructions",
	)

	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}

	return &cfg, flags.Args(), nil
}

func uvmAsm(
	args []string,
	stdin *os.File,
	stdout, stderr io.Writer,
	logger *zap.Logger,
	level zap.AtomicLevel,
) int {
	cfg, args, err := parseFlags(args, stderr)

	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 1
	}

	if cfg.help {
		fmt.Fprintln(stdout, usage)
		return 0
	}

	color := false
	if f, ok := stderr.(*os.File); ok {
		color = term.IsTerminal(f)
	}

	logging.SetVerbose(level, cfg.verbose)

	prefix := func(name string) string {
		if color {
			return fmt.Sprintf("\033[1m%s:\033[0m", name)
		}
		return name + ":"
	}

	var name string
	var input io.Reader
	var infile string

	format := source.FORMAT_JSON

	if len(args) == 1 {
		file, err := os.Open(args[0])

		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}

		defer file.Close()

		name = filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		} else if stat.IsDir() {
			fmt.Fprintf(stderr, "%s is not a valid UVM program file\n", name)
			return 1
		}

		input = file
		infile = file.Name()
		format = source.FormatFromPath(infile)

		if cfg.out == "" {
			cfg.out = strings.TrimSuffix(infile, filepath.Ext(infile)) + ".bin"
		}
	} else if stat, err := stdin.Stat(); len(args) == 0 && err == nil &&
		stat.Mode()&os.ModeCharDevice == 0 {
		input = stdin
		name = "<stdin>"

		if cfg.out == "" {
			cfg.out = "out.bin"
		}
	} else {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	if cfg.format != "" {
		var ok bool

		if format, ok = source.ParseFormat(cfg.format); !ok {
			fmt.Fprintf(stderr, "unknown format '%s'\n", cfg.format)
			return 1
		}
	}

	logger.Debug("reading program",
		zap.String("input", name),
		zap.Stringer("format", format),
	)

	records, err := source.Read(input, format)

	if err != nil {
		fmt.Fprintln(stderr, prefix(name), err)
		return 1
	}

	prog, result, err := assembler.AssembleProgram(
		records, assembler.WithWorkers(cfg.workers),
	)

	var verr *assembler.ValidationError

	if errors.As(err, &verr) {
		logger.Debug("validation failed",
			zap.Int("index", verr.Index),
			zap.Stringer("reason", verr.Reason),
			zap.Int64("value", verr.Value),
		)
		fmt.Fprintln(stderr, prefix(name), err)
		return 1
	} else if err != nil {
		fmt.Fprintln(stderr, prefix(name), err)
		return 1
	}

	logger.Debug("assembled program",
		zap.Int("instructions", len(records)),
		zap.Int("bytes", len(result)),
		zap.Int("workers", cfg.workers),
	)

	if cfg.test {
		printer := listing.Printer{Out: stdout}
		fmt.Fprintln(stdout, "Internal representation:")
		printer.PrintProgram(prog)
		fmt.Fprintln(stdout, "Machine code:")
		img := make([]uint32, prog.Len())
		for i, ins := range prog.Instructions() {
			img[i] = ins.Word()
		}
		printer.PrintMem(img)
	}

	if err := os.WriteFile(cfg.out, result, 0666); err != nil {
		fmt.Fprintln(stderr, "Error writing output file")
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger.Info("wrote binary", zap.String("output", cfg.out))

	if cfg.debug {
		filename := strings.TrimSuffix(cfg.out, filepath.Ext(cfg.out)) +
			listing.TABLE_EXT

		var abs string
		if infile != "" {
			if abs, err = filepath.Abs(infile); err != nil {
				logger.Warn("resolving source path", zap.Error(err))
				abs = ""
			}
		}

		if err := writeTable(filename, listing.NewTable(abs, prog)); err != nil {
			fmt.Fprintln(stderr, "Error writing listing table")
			fmt.Fprintln(stderr, err)
			return 1
		}

		logger.Debug("wrote listing table", zap.String("table", filename))
	}

	return 0
}

func writeTable(filename string, table *listing.Table) error {
	file, err := os.Create(filename)

	if err != nil {
		return err
	}

	if err := listing.WriteTable(file, table); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

// syncLogger flushes buffered log output. It is registered with atexit since
// the deferred calls of main never run on exit.
func syncLogger(logger *zap.Logger) func() {
	return func() {
		_ = logger.Sync()
	}
}

func main() {
	logger, level := logging.New(os.Stderr, term.IsTerminal(os.Stderr))
	atexit.Register(syncLogger(logger))

	atexit.Exit(
		uvmAsm(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, logger, level),
	)
}
