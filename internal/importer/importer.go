// Package importer loads reference tables from spreadsheet CSV exports.
//
// Exports come from several tools with different column names, so each
// canonical field accepts a list of synonyms. Rows missing any required
// field are dropped, and a table is always replaced as a whole.
package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/ports"
)

type Table string

const (
	TablePackages Table = "packages"
	TableLanes    Table = "lanes"
	TableDrivers  Table = "drivers"
)

func ParseTable(s string) (Table, error) {
	switch t := Table(strings.ToLower(strings.TrimSpace(s))); t {
	case TablePackages, TableLanes, TableDrivers:
		return t, nil
	}
	return "", fmt.Errorf("unknown table %q (want packages, lanes or drivers)", s)
}

type field struct {
	name     string
	synonyms []string
	required bool
}

// Synonyms are tried in order; the first header present wins.
var schemas = map[Table][]field{
	TablePackages: {
		{name: "order_id", synonyms: []string{"order_id", "pedido", "id"}, required: true},
		{name: "latitude", synonyms: []string{"latitude", "lat"}, required: true},
		{name: "longitude", synonyms: []string{"longitude", "lng"}, required: true},
	},
	TableLanes: {
		{name: "corridor_cage", synonyms: []string{"corridor_cage", "gaiola"}, required: true},
		{name: "latitude", synonyms: []string{"latitude", "lat"}, required: true},
		{name: "longitude", synonyms: []string{"longitude", "lng"}, required: true},
		{name: "license_plate", synonyms: []string{"license_plate", "placa"}},
		{name: "planned_at", synonyms: []string{"planned_at"}},
	},
	TableDrivers: {
		{name: "driver_id", synonyms: []string{"driver_id", "id"}, required: true},
		{name: "driver_name", synonyms: []string{"driver_name", "nome"}, required: true},
		{name: "license_plate", synonyms: []string{"license_plate", "placa"}, required: true},
	},
}

// Result summarizes one import.
type Result struct {
	Table    Table
	Imported int
	Dropped  int
}

// MapColumns resolves each canonical field of the table to a column index.
// Optional fields that are absent map to -1.
func MapColumns(table Table, header []string) (map[string]int, error) {
	schema, ok := schemas[table]
	if !ok {
		return nil, fmt.Errorf("map columns: unknown table %q", table)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	cols := make(map[string]int, len(schema))
	var missing []string
	for _, f := range schema {
		cols[f.name] = -1
		for _, syn := range f.synonyms {
			if i, ok := index[syn]; ok {
				cols[f.name] = i
				break
			}
		}
		if f.required && cols[f.name] < 0 {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("map columns: %s: missing required columns %s", table, strings.Join(missing, ", "))
	}
	return cols, nil
}

// Rows are the canonical records read from a CSV, keyed by field name.
type Rows []map[string]string

// ReadCSV reads a CSV export and returns the rows that have every required
// field, plus the number of rows dropped. Both comma and semicolon
// separated files are accepted.
func ReadCSV(table Table, r io.Reader) (Rows, int, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, 0, fmt.Errorf("read csv: %w", err)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if line, _, _ := bytes.Cut(first, []byte("\n")); bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("read csv: %s: empty file", table)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv: header: %w", err)
	}

	cols, err := MapColumns(table, header)
	if err != nil {
		return nil, 0, err
	}

	var (
		rows    Rows
		dropped int
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv: line %d: %w", line, err)
		}

		row := make(map[string]string, len(cols))
		complete := true
		for _, f := range schemas[table] {
			var v string
			if i := cols[f.name]; i >= 0 && i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			if f.required && v == "" {
				complete = false
				break
			}
			row[f.name] = v
		}
		if !complete {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped, nil
}

// Packages converts rows into domain packages. Rows with coordinates that
// are not numbers are dropped.
func (rows Rows) Packages() ([]domain.Package, int) {
	out := make([]domain.Package, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		loc, ok := parseCoordinates(row["latitude"], row["longitude"])
		if !ok {
			dropped++
			continue
		}
		out = append(out, domain.Package{OrderID: row["order_id"], Location: loc})
	}
	return out, dropped
}

func (rows Rows) Lanes() ([]domain.Lane, int) {
	out := make([]domain.Lane, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		loc, ok := parseCoordinates(row["latitude"], row["longitude"])
		if !ok {
			dropped++
			continue
		}
		out = append(out, domain.Lane{
			CorridorCage: row["corridor_cage"],
			Location:     loc,
			LicensePlate: row["license_plate"],
			PlannedAt:    row["planned_at"],
		})
	}
	return out, dropped
}

func (rows Rows) Drivers() []domain.Driver {
	out := make([]domain.Driver, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Driver{
			DriverID:     row["driver_id"],
			Name:         row["driver_name"],
			LicensePlate: row["license_plate"],
		})
	}
	return out
}

// Decimal commas ("-8,79") are common in regional exports.
func parseCoordinates(lat, lon string) (domain.Coordinates, bool) {
	la, err1 := strconv.ParseFloat(strings.Replace(lat, ",", ".", 1), 64)
	lo, err2 := strconv.ParseFloat(strings.Replace(lon, ",", ".", 1), 64)
	if err1 != nil || err2 != nil {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: la, Lon: lo}, true
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// Importer replaces reference tables and invalidates the reference cache.
type Importer struct {
	Writer ports.ReferenceWriter
	Cache  invalidator
}

func (im *Importer) Import(ctx context.Context, table Table, r io.Reader) (Result, error) {
	rows, dropped, err := ReadCSV(table, r)
	if err != nil {
		return Result{}, fmt.Errorf("import %s: %w", table, err)
	}

	res := Result{Table: table}
	switch table {
	case TablePackages:
		pkgs, bad := rows.Packages()
		dropped += bad
		err = im.Writer.ReplacePackages(ctx, pkgs)
		res.Imported = len(pkgs)
	case TableLanes:
		lanes, bad := rows.Lanes()
		dropped += bad
		err = im.Writer.ReplaceLanes(ctx, lanes)
		res.Imported = len(lanes)
	case TableDrivers:
		drivers := rows.Drivers()
		err = im.Writer.ReplaceDrivers(ctx, drivers)
		res.Imported = len(drivers)
	default:
		return Result{}, fmt.Errorf("import: unknown table %q", table)
	}
	if err != nil {
		return Result{}, fmt.Errorf("import %s: %w", table, err)
	}
	res.Dropped = dropped

	if im.Cache != nil {
		if err := im.Cache.Invalidate(ctx); err != nil {
			return res, fmt.Errorf("import %s: invalidate cache: %w", table, err)
		}
	}

	log.Printf("op=import table=%s imported=%d dropped=%d", table, res.Imported, res.Dropped)
	return res, nil
}
