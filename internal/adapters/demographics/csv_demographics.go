package demographics

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"hhc-instance-service/internal/ports"
)

// CSVDemographics loads per-census-sector elderly population counts from
// the census export. This input is optional: a missing file surfaces as
// ports.ErrDemographicsMissing and generation proceeds unweighted.
type CSVDemographics struct {
	Path string
}

func NewCSVDemographics(path string) *CSVDemographics {
	return &CSVDemographics{Path: path}
}

// LoadSectors returns sectors with a non-zero elderly population in file
// order.
func (d *CSVDemographics) LoadSectors(ctx context.Context) ([]ports.CensusSector, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load sectors: open %q: %w", d.Path, ports.ErrDemographicsMissing)
		}
		return nil, fmt.Errorf("load sectors: open %q: %w", d.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("load sectors: read header: %w", err)
	}

	codeIdx, popIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "CD_setor":
			codeIdx = i
		case "populacao_idosa":
			popIdx = i
		}
	}
	if codeIdx < 0 || popIdx < 0 {
		return nil, fmt.Errorf("load sectors: %q is missing CD_setor/populacao_idosa columns", d.Path)
	}

	var sectors []ports.CensusSector
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load sectors: read row: %w", err)
		}
		if len(record) <= codeIdx || len(record) <= popIdx {
			continue
		}

		pop, err := strconv.Atoi(strings.TrimSpace(record[popIdx]))
		if err != nil || pop <= 0 {
			continue
		}

		sectors = append(sectors, ports.CensusSector{
			Code:              strings.TrimSpace(record[codeIdx]),
			ElderlyPopulation: pop,
		})
	}

	return sectors, nil
}
