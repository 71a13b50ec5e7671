// Package app wires the pipeline stages together and owns artifact
// commit semantics: a run either writes every artifact or none.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adscope/creativerank/internal/artifacts"
	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/correlate"
	"github.com/adscope/creativerank/internal/derive"
	"github.com/adscope/creativerank/internal/domain"
	"github.com/adscope/creativerank/internal/gates"
	"github.com/adscope/creativerank/internal/load"
	"github.com/adscope/creativerank/internal/report"
	"github.com/adscope/creativerank/internal/score/composite"
	"github.com/adscope/creativerank/internal/vision"
)

// Artifact file names within the output directory.
const (
	ScoresFile    = "creative_scores.csv"
	TagsFile      = "creative_tags.csv"
	ManifestFile  = "manifest.json"
	DashboardFile = "dashboard.html"
)

// Pipeline runs the creative analysis stages against one configuration.
type Pipeline struct {
	cfg    config.Config
	tagger vision.Tagger
}

// NewPipeline builds a pipeline. A nil tagger defaults to the mock
// classifier from the vision configuration.
func NewPipeline(cfg config.Config, tagger vision.Tagger) *Pipeline {
	if tagger == nil {
		tagger = vision.NewMockClient(cfg.Vision)
	}
	return &Pipeline{cfg: cfg, tagger: tagger}
}

// ScoreResult carries the outcome of the scoring stage.
type ScoreResult struct {
	Ranked   []domain.CreativeRecord
	Dropped  []gates.Result
	Manifest *artifacts.Manifest
}

// Score runs load → derive → gate → score and commits the scores
// artifact plus the run manifest into outDir.
func (p *Pipeline) Score(ctx context.Context, inputPath, outDir string) (*ScoreResult, error) {
	result, err := p.score(inputPath)
	if err != nil {
		return nil, err
	}

	err = p.commit(outDir, func(staging string) error {
		if err := artifacts.WriteScores(filepath.Join(staging, ScoresFile), result.Ranked); err != nil {
			return err
		}
		result.Manifest.Artifacts = []string{ScoresFile, ManifestFile}
		return result.Manifest.Write(filepath.Join(staging, ManifestFile))
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", result.Manifest.RunID).
		Int("ranked", len(result.Ranked)).
		Str("out", filepath.Join(outDir, ScoresFile)).
		Msg("scoring stage complete")
	return result, nil
}

func (p *Pipeline) score(inputPath string) (*ScoreResult, error) {
	started := time.Now()

	loader, err := load.NewLoader(p.cfg.Load)
	if err != nil {
		return nil, err
	}
	records, err := loader.LoadFile(inputPath)
	if err != nil {
		return nil, err
	}
	manifest := artifacts.NewManifest(inputPath)
	manifest.SetCount("loaded", len(records))

	records = derive.NewDeriver(p.cfg.Derive).Apply(records)
	manifest.SetCount("derived", len(records))

	kept, dropped := gates.NewQualityGate(p.cfg.Gates).Apply(records)
	manifest.SetCount("gated", len(kept))
	for _, d := range dropped {
		for _, reason := range d.Reasons {
			manifest.GateReasons = append(manifest.GateReasons, fmt.Sprintf("%s: %s", d.AdName, reason))
		}
	}

	scorer, err := composite.NewScorer(p.cfg.Weights)
	if err != nil {
		return nil, err
	}
	ranked, err := scorer.Score(kept)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	manifest.SetCount("scored", len(ranked))

	log.Info().
		Int("loaded", manifest.Counts["loaded"]).
		Int("gated", len(kept)).
		Int("scored", len(ranked)).
		Dur("elapsed", time.Since(started)).
		Msg("batch scored")

	return &ScoreResult{Ranked: ranked, Dropped: dropped, Manifest: manifest}, nil
}

// AnalyzeResult carries the outcome of the tag-correlation stage.
type AnalyzeResult struct {
	Tagged     []domain.CreativeRecord
	Hypotheses []correlate.Hypothesis
}

// Analyze reads the scores artifact, tags the top/bottom selection,
// correlates tags with scores, and commits the tagged artifact.
func (p *Pipeline) Analyze(ctx context.Context, scoresPath, outDir string) (*AnalyzeResult, error) {
	records, err := artifacts.ReadScores(scoresPath)
	if err != nil {
		return nil, err
	}
	result, err := p.analyze(ctx, records)
	if err != nil {
		return nil, err
	}

	err = p.commit(outDir, func(staging string) error {
		return artifacts.WriteTagged(filepath.Join(staging, TagsFile), result.Tagged)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("tagged", len(result.Tagged)).
		Int("hypotheses", len(result.Hypotheses)).
		Str("out", filepath.Join(outDir, TagsFile)).
		Msg("analysis stage complete")
	return result, nil
}

func (p *Pipeline) analyze(ctx context.Context, ranked []domain.CreativeRecord) (*AnalyzeResult, error) {
	selected := SelectForAnalysis(ranked, p.cfg.Analysis.TopN, p.cfg.Analysis.BottomN)

	tagged := make([]domain.CreativeRecord, 0, len(selected))
	for _, rec := range selected {
		tags, err := p.tagger.Tag(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", rec.AdName, err)
		}
		rec.Tags = tags
		tagged = append(tagged, rec)
	}

	hypotheses := correlate.NewCorrelator(p.cfg.Analysis).Analyze(tagged)
	return &AnalyzeResult{Tagged: tagged, Hypotheses: hypotheses}, nil
}

// Report renders the dashboard from a scores artifact, optionally
// recomputing hypotheses from a tagged artifact.
func (p *Pipeline) Report(scoresPath, tagsPath, outPath string) error {
	records, err := artifacts.ReadScores(scoresPath)
	if err != nil {
		return err
	}

	var hypotheses []string
	if tagsPath != "" {
		tagged, err := artifacts.ReadTagged(tagsPath)
		if err != nil {
			return err
		}
		for _, h := range correlate.NewCorrelator(p.cfg.Analysis).Analyze(tagged) {
			hypotheses = append(hypotheses, h.String())
		}
	}

	data := report.Build(records, hypotheses, p.cfg.Report)
	if err := report.RenderFile(outPath, data); err != nil {
		return err
	}
	log.Info().Str("out", outPath).Int("records", len(records)).Msg("dashboard rendered")
	return nil
}

// Run executes the full pipeline in memory and commits every artifact at
// once: scores, tags, manifest and dashboard land together or not at all.
func (p *Pipeline) Run(ctx context.Context, inputPath, outDir string) error {
	scoreResult, err := p.score(inputPath)
	if err != nil {
		return err
	}
	analyzeResult, err := p.analyze(ctx, scoreResult.Ranked)
	if err != nil {
		return err
	}

	var hypotheses []string
	for _, h := range analyzeResult.Hypotheses {
		hypotheses = append(hypotheses, h.String())
	}
	dashboard := report.Build(scoreResult.Ranked, hypotheses, p.cfg.Report)

	manifest := scoreResult.Manifest
	manifest.SetCount("tagged", len(analyzeResult.Tagged))
	manifest.SetCount("hypotheses", len(analyzeResult.Hypotheses))
	manifest.Artifacts = []string{ScoresFile, TagsFile, ManifestFile, DashboardFile}

	err = p.commit(outDir, func(staging string) error {
		if err := artifacts.WriteScores(filepath.Join(staging, ScoresFile), scoreResult.Ranked); err != nil {
			return err
		}
		if err := artifacts.WriteTagged(filepath.Join(staging, TagsFile), analyzeResult.Tagged); err != nil {
			return err
		}
		if err := report.RenderFile(filepath.Join(staging, DashboardFile), dashboard); err != nil {
			return err
		}
		return manifest.Write(filepath.Join(staging, ManifestFile))
	})
	if err != nil {
		return err
	}

	for _, h := range analyzeResult.Hypotheses {
		log.Info().Str("dimension", h.Dimension).Str("kind", string(h.Kind)).Msg(h.String())
	}
	log.Info().
		Str("run_id", manifest.RunID).
		Str("out_dir", outDir).
		Msg("pipeline complete")
	return nil
}

// SelectForAnalysis picks the top and bottom performers for the
// correlation stage. When the batch is smaller than top+bottom the whole
// set is used; duplicates by ad name are removed either way.
func SelectForAnalysis(ranked []domain.CreativeRecord, topN, bottomN int) []domain.CreativeRecord {
	var candidates []domain.CreativeRecord
	if topN+bottomN >= len(ranked) {
		candidates = ranked
	} else {
		candidates = append(candidates, ranked[:topN]...)
		candidates = append(candidates, ranked[len(ranked)-bottomN:]...)
	}

	seen := make(map[string]struct{}, len(candidates))
	selected := make([]domain.CreativeRecord, 0, len(candidates))
	for _, rec := range candidates {
		if _, dup := seen[rec.AdName]; dup {
			continue
		}
		seen[rec.AdName] = struct{}{}
		selected = append(selected, rec)
	}
	return selected
}

// commit stages artifacts in a hidden directory next to the target and
// renames them into place only after every write succeeded.
func (p *Pipeline) commit(outDir string, write func(staging string) error) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	staging, err := os.MkdirTemp(outDir, ".staging-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := write(staging); err != nil {
		return err
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("list staging dir: %w", err)
	}
	for _, entry := range entries {
		src := filepath.Join(staging, entry.Name())
		dst := filepath.Join(outDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("commit artifact %s: %w", entry.Name(), err)
		}
	}
	return nil
}
