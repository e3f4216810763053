package store

import (
	"encoding/json"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/Pusher91/breachwatch/internal/domain"
)

// WatermarkStore persists the single most recently observed breach
// record. Save replaces the whole file atomically; Load degrades an
// unreadable or unparseable file to "no watermark", which forces a full
// re-scan that the dedup log keeps free of duplicate alerts.
type WatermarkStore struct {
	path string
	log  *zap.Logger
}

func NewWatermarkStore(path string, log *zap.Logger) *WatermarkStore {
	return &WatermarkStore{path: path, log: log}
}

func (s *WatermarkStore) Load() (*domain.BreachRecord, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		s.log.Warn("watermark unreadable, treating as absent",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	var rec domain.BreachRecord
	if jerr := json.Unmarshal(b, &rec); jerr != nil {
		s.log.Warn("watermark unparseable, treating as absent",
			zap.String("path", s.path), zap.Error(jerr))
		return nil, nil
	}
	if _, terr := rec.AddedTime(); terr != nil {
		s.log.Warn("watermark added date unparseable, treating as absent",
			zap.String("path", s.path), zap.Error(terr))
		return nil, nil
	}
	return &rec, nil
}

func (s *WatermarkStore) Save(rec domain.BreachRecord) error {
	return writeJSONAtomic(s.path, rec)
}
