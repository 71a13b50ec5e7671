// Package artifacts reads and writes the tabular files that connect the
// pipeline stages, plus the per-run manifest.
package artifacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/adscope/creativerank/internal/domain"
)

// scoreColumns is the intermediate-artifact schema consumed by the
// correlation stage. Order is part of the contract.
var scoreColumns = []string{
	"ad_name", "creative_score", "spend", "impressions", "frequency",
	"ctr_decimal", "outbound_clicks", "cpa", "roas", "cvr_decimal",
	"thruplay_decimal", "creative_link",
}

// WriteScores writes the scored records to the intermediate CSV artifact.
// Floats are written at full precision so re-loading preserves the
// composite score exactly.
func WriteScores(path string, records []domain.CreativeRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scores artifact: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(scoreColumns); err != nil {
		return fmt.Errorf("write scores header: %w", err)
	}
	for i := range records {
		if err := w.Write(scoreRow(&records[i])); err != nil {
			return fmt.Errorf("write scores row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush scores artifact: %w", err)
	}
	return nil
}

// WriteTagged writes the final artifact: the score columns plus one
// column per tag dimension.
func WriteTagged(path string, records []domain.CreativeRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tagged artifact: %w", err)
	}
	defer file.Close()

	header := append(append([]string{}, scoreColumns...), domain.TagDimensions()...)

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write tagged header: %w", err)
	}
	for i := range records {
		row := scoreRow(&records[i])
		for _, dim := range domain.TagDimensions() {
			row = append(row, records[i].Tags[dim])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write tagged row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush tagged artifact: %w", err)
	}
	return nil
}

// ReadScores loads the intermediate artifact back into records. This is
// the sole input of the correlation stage.
func ReadScores(path string) ([]domain.CreativeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scores artifact %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read scores header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range scoreColumns[:2] { // ad_name, creative_score
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("scores artifact missing column %q", required)
		}
	}

	var records []domain.CreativeRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read scores row: %w", err)
		}

		get := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		num := func(col string) float64 {
			v, err := strconv.ParseFloat(get(col), 64)
			if err != nil {
				return 0
			}
			return v
		}

		records = append(records, domain.CreativeRecord{
			AdName:         get("ad_name"),
			CreativeLink:   get("creative_link"),
			Score:          num("creative_score"),
			Spend:          num("spend"),
			Impressions:    num("impressions"),
			Frequency:      num("frequency"),
			CTR:            num("ctr_decimal"),
			OutboundClicks: num("outbound_clicks"),
			CPA:            num("cpa"),
			ROAS:           num("roas"),
			CVR:            num("cvr_decimal"),
			ThruPlay:       num("thruplay_decimal"),
		})
	}
	return records, nil
}

// ReadTagged loads the final artifact, including the tag columns.
func ReadTagged(path string) ([]domain.CreativeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tagged artifact %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read tagged header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var records []domain.CreativeRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tagged row: %w", err)
		}

		get := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		score, _ := strconv.ParseFloat(get("creative_score"), 64)

		rec := domain.CreativeRecord{
			AdName: get("ad_name"),
			Score:  score,
			Tags:   make(map[string]string, len(domain.TagDimensions())),
		}
		for _, dim := range domain.TagDimensions() {
			if v := get(dim); v != "" {
				rec.Tags[dim] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func scoreRow(rec *domain.CreativeRecord) []string {
	return []string{
		rec.AdName,
		formatFloat(rec.Score),
		formatFloat(rec.Spend),
		formatFloat(rec.Impressions),
		formatFloat(rec.Frequency),
		formatFloat(rec.CTR),
		formatFloat(rec.OutboundClicks),
		formatFloat(rec.CPA),
		formatFloat(rec.ROAS),
		formatFloat(rec.CVR),
		formatFloat(rec.ThruPlay),
		rec.CreativeLink,
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
