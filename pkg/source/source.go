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

// Package source reads UVM program descriptions into raw assembler records.
//
// A program is an array of objects, each with an "opcode" (or "A") key and a
// "B" key holding the operand. Values are integers or string literals in the
// forms accepted by encoding.DecodeLiteral; the opcode may also be given as a
// mnemonic. Absent keys are kept absent so the assembler can report them.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lassandro/gouvm/pkg/assembler"
	"github.com/lassandro/gouvm/pkg/encoding"
)

func ParseFormat(name string) (Format, bool) {
	if strings.EqualFold(name, "json") {
		return FORMAT_JSON, true
	} else if strings.EqualFold(name, "yaml") || strings.EqualFold(name, "yml") {
		return FORMAT_YAML, true
	}

	return FORMAT_JSON, false
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON for everything else.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	if format, ok := ParseFormat(ext); ok {
		return format
	}

	return FORMAT_JSON
}

func Read(input io.Reader, format Format) ([]assembler.Record, error) {
	data, err := io.ReadAll(input)

	if err != nil {
		return nil, err
	}

	var doc interface{}

	switch format {
	case FORMAT_JSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()

		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}

		end := decoder.InputOffset()

		var extra interface{}

		if err := decoder.Decode(&extra); err != io.EOF {
			return nil, &TrailingDataError{end}
		}
	case FORMAT_YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported source format %d", format)
	}

	items, ok := doc.([]interface{})

	if !ok {
		return nil, &NotArrayError{describe(doc)}
	}

	records := make([]assembler.Record, 0, len(items))

	for index, item := range items {
		fields, ok := item.(map[string]interface{})

		if !ok {
			return nil, &InvalidRecordError{index, describe(item)}
		}

		var record assembler.Record

		opcode, exists := fields[KEY_OPCODE]

		if !exists {
			opcode, exists = fields[KEY_OPCODE_SHORT]
		}

		if exists && opcode != nil {
			value, err := parseValue(opcode, true)

			if err != nil {
				return nil, &InvalidLiteralError{index, KEY_OPCODE, err.Error()}
			}

			record.Opcode = &value
		}

		if operand := fields[KEY_OPERAND]; operand != nil {
			value, err := parseValue(operand, false)

			if err != nil {
				return nil, &InvalidLiteralError{index, KEY_OPERAND, err.Error()}
			}

			record.Operand = &value
		}

		records = append(records, record)
	}

	return records, nil
}

// Integers too wide for int64 saturate so the assembler reports them as out of
// range rather than as malformed literals.
func parseValue(value interface{}, mnemonic bool) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()

		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(string(v), "-") {
				return math.MinInt64, nil
			}
			return math.MaxInt64, nil
		}

		return n, err
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return math.MaxInt64, nil
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		} else if v >= math.MaxInt64 {
			return math.MaxInt64, nil
		} else if v < math.MinInt64 {
			return math.MinInt64, nil
		}
		return int64(v), nil
	case string:
		if mnemonic {
			if op, ok := assembler.ParseOpcode(strings.TrimSpace(v)); ok {
				return int64(op), nil
			}
		}
		return encoding.DecodeLiteral(v)
	}

	return 0, fmt.Errorf("unexpected %s", describe(value))
}

func describe(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case map[string]interface{}, map[interface{}]interface{}:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	}

	return "number"
}
