package strategy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockSim/internal/domain"
)

// strategyFile is the on-disk layout of a strategies YAML file.
type strategyFile struct {
	Strategies []domain.Strategy `yaml:"strategies"`
}

// LoadStrategies decodes a strategies YAML document. Missing IDs are
// assigned, the file's active flag is kept, and every strategy is validated.
func LoadStrategies(r io.Reader, now time.Time) ([]domain.Strategy, error) {
	var file strategyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode strategies: %w", err)
	}

	var errs []string
	out := make([]domain.Strategy, 0, len(file.Strategies))
	for i, raw := range file.Strategies {
		s := NewStrategy(raw.Name, raw.Description, raw.Conditions, raw.Action, now)
		if raw.ID != "" {
			s.ID = raw.ID
		}
		s.IsActive = raw.IsActive
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("strategy %d (%s): %v", i, raw.Name, err))
			continue
		}
		out = append(out, s)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid strategies file: %s", strings.Join(errs, "; "))
	}
	return out, nil
}

// LoadStrategiesFile reads strategies from a YAML file on disk.
func LoadStrategiesFile(path string, now time.Time) ([]domain.Strategy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open strategies file: %w", err)
	}
	defer f.Close()
	return LoadStrategies(f, now)
}

// WriteStrategies encodes strategies in the layout LoadStrategies reads.
func WriteStrategies(w io.Writer, strategies []domain.Strategy) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(strategyFile{Strategies: strategies}); err != nil {
		return fmt.Errorf("failed to encode strategies: %w", err)
	}
	return enc.Close()
}
