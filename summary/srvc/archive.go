package srvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/schein/logger"
	"github.com/programme-lv/schein/summary"
)

// Archive describes an uploaded summary snapshot.
type Archive struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Students int    `json:"students"`
}

type archiveSnapshot struct {
	TutorialID uuid.UUID                     `json:"tutorialId"`
	CreatedAt  time.Time                     `json:"createdAt"`
	Summaries  map[uuid.UUID]summary.Summary `json:"summaries"`
}

func archiveKey(tutorialID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("tutorial-summaries/%s/%s.json.zst", tutorialID, at.UTC().Format("20060102T150405Z"))
}

// ArchiveTutorialSummaries evaluates a tutorial and uploads the result as a
// zstd compressed JSON snapshot.
func (s *SummarySrvc) ArchiveTutorialSummaries(ctx context.Context, tutorialID uuid.UUID) (Archive, error) {
	if s.archive == nil {
		return Archive{}, NewErrorArchiveDisabled()
	}

	summaries, err := s.GetTutorialSummaries(ctx, tutorialID)
	if err != nil {
		return Archive{}, err
	}

	now := s.now()
	data, err := json.Marshal(archiveSnapshot{
		TutorialID: tutorialID,
		CreatedAt:  now.UTC(),
		Summaries:  summaries,
	})
	if err != nil {
		return Archive{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	compressed, err := compressWithZstd(data)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	key := archiveKey(tutorialID, now)
	url, err := s.archive.Upload(ctx, compressed, key, "application/zstd")
	if err != nil {
		return Archive{}, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	logger.FromContext(ctx).Info("archived tutorial summaries",
		"tutorial_id", tutorialID,
		"key", key,
		"raw_bytes", len(data),
		"compressed_bytes", len(compressed))
	return Archive{Key: key, URL: url, Students: len(summaries)}, nil
}

func compressWithZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// DecodeArchive reverses the archive encoding. Used by tooling that reads
// snapshots back.
func DecodeArchive(compressed []byte) (uuid.UUID, time.Time, map[uuid.UUID]summary.Summary, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return uuid.Nil, time.Time{}, nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return uuid.Nil, time.Time{}, nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	var snap archiveSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return uuid.Nil, time.Time{}, nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap.TutorialID, snap.CreatedAt, snap.Summaries, nil
}
