package model

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/traceai/engine/internal/event"
)

// #region paths

// ArtifactPath returns the location of a domain's model artifact under dir.
func ArtifactPath(dir string, d event.Domain) string {
	return filepath.Join(dir, fmt.Sprintf("%s_model.json", d))
}

// #endregion paths

// #region save

// SaveArtifact persists a parameter set as one atomic blob. The artifact is
// written to a temp file and renamed into place so a reader never observes
// weights without their matching normalization.
func SaveArtifact(dir string, p Parameters) error {
	if err := validate(p); err != nil {
		return fmt.Errorf("refusing to persist invalid parameters: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	final := ArtifactPath(dir, p.Domain)
	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s_model-*.tmp", p.Domain))
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// #endregion save

// #region load

// LoadArtifact reads and validates a domain's persisted parameters.
func LoadArtifact(dir string, d event.Domain) (Parameters, error) {
	data, err := os.ReadFile(ArtifactPath(dir, d))
	if err != nil {
		return Parameters{}, fmt.Errorf("read artifact: %w", err)
	}
	var p Parameters
	if err := json.Unmarshal(data, &p); err != nil {
		return Parameters{}, fmt.Errorf("unmarshal artifact: %w", err)
	}
	if err := validate(p); err != nil {
		return Parameters{}, fmt.Errorf("corrupt artifact for %s: %w", d, err)
	}
	return p, nil
}

// LoadAll creates one model per domain and loads whatever artifacts exist
// under dir. Missing or corrupt artifacts leave that domain's model unloaded;
// the map always contains all four domains.
func LoadAll(dir string) map[event.Domain]*RiskModel {
	models := make(map[event.Domain]*RiskModel, len(event.Domains))
	for _, d := range event.Domains {
		m := NewRiskModel(d)
		if p, err := LoadArtifact(dir, d); err != nil {
			log.Printf("[MODEL] %s left unloaded: %v", d, err)
		} else if loadErr := m.Load(p); loadErr != nil {
			log.Printf("[MODEL] %s artifact rejected: %v", d, loadErr)
		}
		models[d] = m
	}
	return models
}

// #endregion load
