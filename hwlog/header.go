package hwlog

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/JuanjoFuchs/hwinfo-tui/sensor"
	"github.com/JuanjoFuchs/hwinfo-tui/units"
)

// column is one header column and its position in a data row.
type column struct {
	def   sensor.Definition
	index int
}

// parseHeader splits a decoded header line into sensor columns. The first
// two columns must be the Date and Time columns; every later column becomes
// a sensor definition by splitting off a trailing bracketed unit token.
func parseHeader(line string) ([]column, error) {
	fields, err := splitRow(line)
	if err != nil {
		return nil, fmt.Errorf("header split: %w", err)
	}

	if len(fields) < 3 {
		return nil, fmt.Errorf("header has %d columns, need Date, Time and at least one sensor", len(fields))
	}

	if !strings.EqualFold(strings.TrimSpace(fields[0]), "Date") ||
		!strings.EqualFold(strings.TrimSpace(fields[1]), "Time") {
		return nil, fmt.Errorf("header must start with Date, Time columns, got %q, %q", fields[0], fields[1])
	}

	cols := make([]column, 0, len(fields)-2)
	for i, field := range fields[2:] {
		name, rawUnit := splitUnit(field)
		if name == "" {
			return nil, fmt.Errorf("empty sensor name in column %d", i+3)
		}
		cols = append(cols, column{
			def: sensor.Definition{
				Name:    name,
				RawUnit: rawUnit,
				Unit:    units.Normalize(rawUnit),
			},
			index: i + 2,
		})
	}

	return cols, nil
}

// splitUnit separates "CPU Package [°C]" into display name and raw unit
// token. A column without a trailing bracketed token is unitless.
func splitUnit(field string) (name, rawUnit string) {
	field = strings.TrimSpace(field)
	if !strings.HasSuffix(field, "]") {
		return field, ""
	}

	open := strings.LastIndex(field, "[")
	if open <= 0 {
		return field, ""
	}

	name = strings.TrimSpace(field[:open])
	rawUnit = strings.TrimSpace(field[open+1 : len(field)-1])
	return name, rawUnit
}

// splitRow splits one CSV line into fields, honoring double-quoted fields
// as HWiNFO emits for sensor names containing commas.
func splitRow(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	return fields, nil
}
