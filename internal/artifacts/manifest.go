package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest records what one run consumed and produced, for traceability
// of ranked output that is otherwise just a pile of CSVs.
type Manifest struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Input       string         `json:"input"`
	Counts      map[string]int `json:"counts"`
	GateReasons []string       `json:"gate_reasons,omitempty"`
	Artifacts   []string       `json:"artifacts"`
}

// NewManifest starts a manifest for a fresh run.
func NewManifest(input string) *Manifest {
	return &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Counts:      make(map[string]int),
	}
}

// SetCount records a per-stage record count.
func (m *Manifest) SetCount(stage string, n int) {
	m.Counts[stage] = n
}

// Write serializes the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
