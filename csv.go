package wsp

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteCSV writes the retained points of ps to w, one row per active point
// in original relative order, each row a comma-separated list of
// coordinates. When header is true, a first row names the columns
// x0..x{M-1}. Write failures are returned, never swallowed.
func WriteCSV(w io.Writer, ps *PointSet, header bool) error {
	cw := csv.NewWriter(w)

	if header {
		cols := make([]string, ps.dims)
		for j := range cols {
			cols[j] = "x" + strconv.Itoa(j)
		}
		if err := cw.Write(cols); err != nil {
			return fmt.Errorf("wsp: writing csv header: %w", err)
		}
	}

	record := make([]string, ps.dims)
	for i := 0; i < ps.n; i++ {
		if !ps.active[i] {
			continue
		}
		pt := ps.Point(i)
		for j, v := range pt {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("wsp: writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("wsp: flushing csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the retained points of ps to the file at path,
// creating or truncating it.
func WriteCSVFile(path string, ps *PointSet, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wsp: creating %s: %w", path, err)
	}
	if err := WriteCSV(f, ps, header); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("wsp: closing %s: %w", path, err)
	}
	return nil
}

// ReadCSV parses coordinate vectors from r, one point per row. A first row
// whose fields do not all parse as numbers is treated as a header and
// skipped. All rows must have the same number of columns.
func ReadCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // uniformity checked below with a better message

	var points [][]float64
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("wsp: reading csv: %w", err)
		}
		row++

		point := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			point[j] = v
		}
		if !ok {
			if row == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("wsp: csv row %d contains a non-numeric field", row)
		}
		if len(points) > 0 && len(point) != len(points[0]) {
			return nil, fmt.Errorf("wsp: csv row %d has %d columns, want %d", row, len(point), len(points[0]))
		}
		points = append(points, point)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("wsp: csv contains no data rows")
	}
	return points, nil
}
