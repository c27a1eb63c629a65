package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/platform/obs"
	"stop-sequencing-service/internal/ports"
	"strconv"
	"strings"
	"sync"
)

// Bound on concurrent geocoder calls per import.
const maxConcurrentGeocodes = 5

type column int

const (
	colSkip column = iota
	colAddress
	colName
	colLat
	colLon
	colNotes
	colService
	colStart
	colEnd
	colPriority
)

// Map a header cell to a column by substring, first match wins.
func matchHeader(h string) column {
	h = strings.ToLower(strings.TrimSpace(h))
	switch {
	case strings.Contains(h, "address"):
		return colAddress
	case strings.Contains(h, "name"):
		return colName
	case strings.Contains(h, "lat"):
		return colLat
	case strings.Contains(h, "lng"), strings.Contains(h, "lon"):
		return colLon
	case strings.Contains(h, "note"):
		return colNotes
	case strings.Contains(h, "service"):
		return colService
	case strings.Contains(h, "start"):
		return colStart
	case strings.Contains(h, "end"):
		return colEnd
	case strings.Contains(h, "priority"):
		return colPriority
	}
	return colSkip
}

type RowError struct {
	Line    int
	Address string
	Err     string
}

// Result of one import. Stops holds the rows that parsed and resolved, in
// file order.
type Result struct {
	Stops    []domain.StopInput
	Imported int
	Failed   int
	Errors   []RowError
}

// CSVImporter turns a CSV file of stops into stop inputs.
// Rows without coordinates are resolved through the geocoder, when set.
type CSVImporter struct {
	geocoder ports.Geocoder
}

// geocoder may be nil.
func NewCSVImporter(geocoder ports.Geocoder) *CSVImporter {
	return &CSVImporter{geocoder: geocoder}
}

type row struct {
	line      int
	input     domain.StopInput
	hasCoords bool
	err       error
}

func (im *CSVImporter) Import(ctx context.Context, r io.Reader) (_ *Result, err error) {
	defer obs.Time(ctx, "importer.Import")(&err)

	rows, err := parse(r)
	if err != nil {
		return nil, err
	}

	im.geocodeMissing(ctx, rows)

	res := &Result{Stops: []domain.StopInput{}, Errors: []RowError{}}
	for _, rw := range rows {
		if rw.err == nil {
			// Validate as a stop now so one bad row cannot reject the batch later.
			probe := rw.input.ToStop(0)
			probe.ID = "import"
			rw.err = probe.Validate()
		}
		if rw.err != nil {
			res.Failed++
			res.Errors = append(res.Errors, RowError{Line: rw.line, Address: rw.input.Address, Err: rw.err.Error()})
			continue
		}
		res.Imported++
		res.Stops = append(res.Stops, rw.input)
	}
	return res, nil
}

func parse(r io.Reader) ([]*row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("import csv: %w: empty file", domain.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("import csv: read header: %w: %v", domain.ErrMalformedInput, err)
	}

	cols := make([]column, len(header))
	hasAddress := false
	for i, h := range header {
		cols[i] = matchHeader(h)
		hasAddress = hasAddress || cols[i] == colAddress
	}
	if !hasAddress {
		return nil, fmt.Errorf("import csv: %w: no address column in header %v", domain.ErrMalformedInput, header)
	}

	var rows []*row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("import csv: %w: %v", domain.ErrMalformedInput, err)
		}
		line, _ := cr.FieldPos(0)

		rw := parseRecord(cols, record)
		rw.line = line
		// Rows without an address are skipped, not failed.
		if strings.TrimSpace(rw.input.Address) == "" {
			continue
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

func parseRecord(cols []column, record []string) *row {
	rw := &row{}
	var lat, lon string

	for i, c := range cols {
		if i >= len(record) {
			break
		}
		v := strings.TrimSpace(record[i])
		switch c {
		case colAddress:
			rw.input.Address = v
		case colName:
			rw.input.Name = v
		case colLat:
			lat = v
		case colLon:
			lon = v
		case colNotes:
			rw.input.Notes = v
		case colService:
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				rw.err = fmt.Errorf("%w: service time %q is not a whole number of minutes", domain.ErrMalformedInput, v)
				continue
			}
			rw.input.ServiceTime = domain.Some(n)
		case colStart:
			rw.input.TimeWindowStart = v
		case colEnd:
			rw.input.TimeWindowEnd = v
		case colPriority:
			rw.input.Priority = domain.Priority(strings.ToLower(v))
		}
	}

	if lat != "" && lon != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		lo, errLon := strconv.ParseFloat(lon, 64)
		if errLat != nil || errLon != nil {
			rw.err = fmt.Errorf("%w: coordinates %q,%q are not numbers", domain.ErrMalformedInput, lat, lon)
			return rw
		}
		rw.input.Coordinates = domain.Coordinates{Lat: la, Lon: lo}
		rw.hasCoords = true
	}
	return rw
}

// Resolve rows without coordinates, at most maxConcurrentGeocodes at a time.
func (im *CSVImporter) geocodeMissing(ctx context.Context, rows []*row) {
	sem := make(chan struct{}, maxConcurrentGeocodes)
	var wg sync.WaitGroup

	for _, rw := range rows {
		if rw.err != nil || rw.hasCoords {
			continue
		}
		if im.geocoder == nil {
			rw.err = errors.New("no coordinates and no geocoder configured")
			continue
		}

		wg.Add(1)
		go func(rw *row) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			c, err := im.geocoder.Geocode(ctx, rw.input.Address)
			if err != nil {
				rw.err = fmt.Errorf("geocode %q: %w", rw.input.Address, err)
				return
			}
			rw.input.Coordinates = c
			rw.hasCoords = true
		}(rw)
	}

	wg.Wait()
}
