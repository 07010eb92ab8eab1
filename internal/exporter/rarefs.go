package exporter

import (
	"context"

	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/refs"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

// Level selects which record levels to export.
type Level string

const (
	LevelFile Level = "file"
	LevelItem Level = "item"
	LevelBoth Level = "both"
)

// RefsExport maps individual RA references onto the records that hold
// them, with ranges expanded; eg GEO/ADD/32/12-13 yields GEO/ADD/32/12 and
// GEO/ADD/32/13. It is used for image import, where each image is
// associated with a single RA reference value.
type RefsExport struct {
	// Refs maps each expanded reference to its record's UUID.
	Refs map[string]string `json:"refs"`
	// Duplicates holds references claimed by more than one record of the
	// same level, with every claimant; such references appear in no other
	// map.
	Duplicates map[string][]string `json:"duplicates"`
	// Errors maps each range that could not be expanded to its record.
	Errors refs.Errors `json:"errors"`
	// StrippedRefs repeats Refs with leading zeros removed from every
	// "/"-separated part of the reference.
	StrippedRefs map[string]string `json:"stripped_refs"`
}

type RAReferenceExporter interface {
	Export(ctx context.Context, level Level) (*RefsExport, error)
}

type raReferenceExporter struct {
	db      *gorm.DB
	log     *logger.Logger
	records repos.RecordRepo
	vocab   repos.VocabRepo
}

func NewRAReferenceExporter(db *gorm.DB, baseLog *logger.Logger, records repos.RecordRepo, vocab repos.VocabRepo) RAReferenceExporter {
	serviceLog := baseLog.With("service", "RAReferenceExporter")
	return &raReferenceExporter{
		db:      db,
		log:     serviceLog,
		records: records,
		vocab:   vocab,
	}
}

// Export expands the RA references of every non-deleted record at the
// requested level(s). Items are processed before files; where a file
// reference conflicts with an item reference, the item wins and the file
// reference is dropped.
func (s *raReferenceExporter) Export(ctx context.Context, level Level) (*RefsExport, error) {
	raSource, err := s.vocab.GetReferenceSource(ctx, nil, "RA")
	if err != nil {
		return nil, err
	}

	export := &RefsExport{
		Refs:         map[string]string{},
		Duplicates:   map[string][]string{},
		Errors:       refs.Errors{},
		StrippedRefs: map[string]string{},
	}
	fileRefs := map[string]string{}

	if level == LevelBoth || level == LevelItem {
		records, err := s.records.ListNonDeletedByLevel(ctx, nil, types.LevelItem)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			s.collect(record, raSource, export, fileRefs, false)
		}
	}
	if level == LevelBoth || level == LevelFile {
		records, err := s.records.ListNonDeletedByLevel(ctx, nil, types.LevelFile)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			s.collect(record, raSource, export, fileRefs, true)
		}
	}

	for ref, recordID := range fileRefs {
		export.Refs[ref] = recordID
	}
	for ref, recordID := range export.Refs {
		export.StrippedRefs[refs.StripZeros(ref)] = recordID
	}
	return export, nil
}

func (s *raReferenceExporter) collect(record *types.ArchivalRecord, source *types.ReferenceSource, export *RefsExport, fileRefs map[string]string, isFile bool) {
	var expanded []string
	for _, reference := range record.References {
		if reference.SourceID != source.ID {
			continue
		}
		expanded = append(expanded, refs.Expand(reference.Unitid, record.UUID, export.Errors)...)
	}
	for _, ref := range expanded {
		if claimants, ok := export.Duplicates[ref]; ok {
			export.Duplicates[ref] = append(claimants, record.UUID)
			continue
		}
		if holder, ok := export.Refs[ref]; ok {
			if isFile {
				// A file reference conflicting with an item reference is
				// dropped in the item's favour.
				continue
			}
			delete(export.Refs, ref)
			export.Duplicates[ref] = []string{holder, record.UUID}
			continue
		}
		if holder, ok := fileRefs[ref]; ok {
			delete(fileRefs, ref)
			export.Duplicates[ref] = []string{holder, record.UUID}
			continue
		}
		if isFile {
			fileRefs[ref] = record.UUID
		} else {
			export.Refs[ref] = record.UUID
		}
	}
}
