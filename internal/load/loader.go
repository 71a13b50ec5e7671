package load

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

// Loader reads a raw creative export and produces canonical records.
// Row-level problems (bad numerics, missing identifiers, aggregate ads)
// are recovered by dropping or substituting; only file-level problems
// are returned as errors.
type Loader struct {
	cfg     config.LoadConfig
	exclude *regexp.Regexp
}

// NewLoader creates a loader from the load configuration.
func NewLoader(cfg config.LoadConfig) (*Loader, error) {
	var exclude *regexp.Regexp
	if cfg.ExcludePattern != "" {
		var err error
		exclude, err = regexp.Compile(cfg.ExcludePattern)
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern: %w", err)
		}
	}
	return &Loader{cfg: cfg, exclude: exclude}, nil
}

// LoadFile reads the export at path and returns canonical records.
// A missing file is a terminal condition for the whole run.
func (l *Loader) LoadFile(path string) ([]domain.CreativeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}

	text, err := decodeText(data, l.cfg.Encodings)
	if err != nil {
		return nil, fmt.Errorf("decode export %s: %w", path, err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // exports pad trailing columns inconsistently

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}
	columns := l.mapColumns(header)

	var (
		records  []domain.CreativeRecord
		dropped  int
		excluded int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, recover by dropping it.
			dropped++
			continue
		}

		rec := l.parseRow(row, columns)

		// A record missing its identifiers cannot be ranked.
		if rec.AdName == "" || rec.AdID == "" || math.IsNaN(rec.Spend) {
			dropped++
			continue
		}
		// Aggregated and dynamic placeholder ads are not single creatives.
		if l.exclude != nil && l.exclude.MatchString(rec.AdName) {
			excluded++
			continue
		}

		records = append(records, rec)
	}

	log.Debug().
		Str("path", path).
		Int("loaded", len(records)).
		Int("dropped", dropped).
		Int("excluded", excluded).
		Msg("export loaded")

	return records, nil
}

// mapColumns resolves each canonical field name to its column index,
// trimming header whitespace before applying the rename mapping.
func (l *Loader) mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if canonical, ok := l.cfg.Columns[name]; ok {
			columns[canonical] = i
		}
	}
	return columns
}

func (l *Loader) parseRow(row []string, columns map[string]int) domain.CreativeRecord {
	get := func(canonical string) string {
		idx, ok := columns[canonical]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	return domain.CreativeRecord{
		AdName:         get("ad_name"),
		AdID:           get("ad_id"),
		CreativeID:     get("creative_id"),
		CreativeLink:   get("creative_link"),
		Spend:          parseNumber(get("spend")),
		Impressions:    parseNumber(get("impressions")),
		Reach:          parseNumber(get("reach")),
		Frequency:      parseNumber(get("frequency")),
		ClicksAll:      parseNumber(get("clicks_all")),
		OutboundClicks: parseNumber(get("outbound_clicks")),
		Purchases:      parseNumber(get("purchases")),
		CTRRaw:         parseNumber(get("ctr_raw")),
		ROAS:           parseNumber(get("roas")),
		VideoPlays95:   parseNumber(get("video_plays_95")),
	}
}

// parseNumber coerces an export cell to a float. Currency symbols,
// thousands separators, and percent signs are tolerated; anything that
// still fails to parse becomes NaN (missing) rather than an error.
func parseNumber(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', '%', ' ':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
