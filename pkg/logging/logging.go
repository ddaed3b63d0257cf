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

package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger for the command line tools. Timestamps are
// omitted and the level starts at warn; the returned level can be lowered
// once flags are parsed.
//
// Output is buffered. Callers must Sync the logger before the process exits.
func New(w io.Writer, color bool) (*zap.Logger, zap.AtomicLevel) {
	config := zap.NewDevelopmentEncoderConfig()
	config.TimeKey = ""
	config.CallerKey = ""

	if color {
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		&zapcore.BufferedWriteSyncer{WS: zapcore.AddSync(w)},
		level,
	)

	return zap.New(core), level
}

// SetVerbose lowers level to debug when verbose is set.
func SetVerbose(level zap.AtomicLevel, verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
}
