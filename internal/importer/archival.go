package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/dates"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/services"
	"github.com/gpp-archive/autharch/internal/types"
)

var reSpace = regexp.MustCompile(`\s+`)

// Names of languages appearing in the source spreadsheets, mapped to their
// ISO 639-2 codes.
var languageCodes = map[string]string{
	"Danish":                "dan",
	"Dutch":                 "dut",
	"English":               "eng",
	"French":                "fre",
	"Gaelic":                "gla",
	"German":                "ger",
	"Greek, Modern (1453-)": "gre",
	"Hindi":                 "hin",
	"Italian":               "ita",
	"Latin":                 "lat",
	"Portuguese":            "por",
	"Russian":               "rus",
	"Spanish":               "spa",
	"Swedish":               "swe",
	"Welsh":                 "wel",
}

// ArchivalImporter imports archival records from CSV and XLSX files.
//
// The CALM reference defines the hierarchy, with parts separated by "/";
// eg DEBUDE/1/1 is the first file or item in the first series of the DEBUDE
// collection. Because related rows may arrive in any order across any of
// the supplied files, the import operates in two phases: the first creates
// every record with its own data, the second adds the parent links between
// them.
type ArchivalImporter interface {
	Import(ctx context.Context, projectSlug string, paths []string) error
}

type archivalImporter struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         Config
	projects    repos.ProjectRepo
	records     repos.RecordRepo
	references  repos.ReferenceRepo
	vocab       repos.VocabRepo
	resolver    services.EntityResolver
	revisionSvc services.RevisionService
}

func NewArchivalImporter(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg Config,
	projects repos.ProjectRepo,
	records repos.RecordRepo,
	references repos.ReferenceRepo,
	vocab repos.VocabRepo,
	resolver services.EntityResolver,
	revisionSvc services.RevisionService,
) ArchivalImporter {
	serviceLog := baseLog.With("service", "ArchivalImporter")
	return &archivalImporter{
		db:          db,
		log:         serviceLog,
		cfg:         cfg,
		projects:    projects,
		records:     records,
		references:  references,
		vocab:       vocab,
		resolver:    resolver,
		revisionSvc: revisionSvc,
	}
}

// created tracks a record made during this run, with where it came from for
// log messages in the relationship phase.
type createdRecord struct {
	record   *types.ArchivalRecord
	location string
}

func (s *archivalImporter) Import(ctx context.Context, projectSlug string, paths []string) error {
	project, err := s.projects.GetBySlug(ctx, nil, projectSlug)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %q does not exist", projectSlug)
	}
	s.log.Info("Importing records into project", "project", project.Title)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var created []*createdRecord
		for _, path := range paths {
			tables, err := readTables(path, s.log)
			if err != nil {
				return err
			}
			for _, tbl := range tables {
				for _, row := range tbl.rows {
					record, err := s.importRow(ctx, tx, project, tbl, row)
					if err != nil {
						return err
					}
					if record != nil {
						created = append(created, &createdRecord{record: record, location: tbl.location()})
					}
				}
			}
		}
		for _, c := range created {
			if err := s.linkParent(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, c := range created {
			comment := fmt.Sprintf("Initial revision from import of %s.", c.location)
			if _, err := s.revisionSvc.Record(ctx, tx, services.RevisionObjectRecord,
				c.record.ID, s.cfg.Actor, comment, c.record); err != nil {
				return err
			}
		}
		return nil
	})
}

// importRow creates one record. A nil record with a nil error means the row
// was skipped; the reason has been logged.
func (s *archivalImporter) importRow(ctx context.Context, tx *gorm.DB, project *types.Project, tbl *table, row map[string]string) (*types.ArchivalRecord, error) {
	id := row["ID"]
	if id == "" {
		s.log.Warn("MISSING ID: record has no ID value; skipping",
			"title", rowTitle(row), "location", tbl.location())
		return nil, nil
	}

	level, ok := types.ParseLevel(row["Level"])
	if !ok {
		s.log.Warn("Invalid level; skipping row",
			"level", row["Level"], "location", tbl.location())
		return nil, nil
	}

	existing, err := s.records.GetByUUID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Warn("DUPLICATE ID: record already exists",
			"uuid", id, "ra_reference", row["RA_Reference"],
			"calm_reference", row["CALM_reference"], "location", tbl.location())
		if existing.Level != level {
			s.log.Warn("Existing record has a different level",
				"uuid", id, "existing_level", existing.Level,
				"wanted_level", level, "location", tbl.location())
		}
		if existing.ProjectID != nil && *existing.ProjectID != project.ID {
			return nil, fmt.Errorf(
				"record with UUID %q in data at %s already exists under different project %q",
				id, tbl.location(), existing.Project.Title)
		}
		return nil, nil
	}

	record := &types.ArchivalRecord{
		ID:        uuid.New(),
		UUID:      id,
		Level:     level,
		ProjectID: &project.ID,
		Language:  s.cfg.Language,
		Script:    s.cfg.Script,
	}
	if err := s.addBaseData(ctx, tx, record, tbl, row); err != nil {
		return nil, err
	}

	switch level {
	case types.LevelCollection:
		record.AdministrativeHistory = row["Admin History"]
		record.Arrangement = row["Arrangement"]
	case types.LevelSeries:
		record.Publications = row["Publications"]
		record.Arrangement = row["Arrangement"]
	case types.LevelFile, types.LevelItem:
		record.Publications = row["Publications"]
		record.PhysicalDescription = row["Physical Description"]
		record.Withheld = row["Withheld"]
	}

	if _, err := s.records.Create(ctx, tx, record); err != nil {
		return nil, err
	}

	if level == types.LevelFile || level == types.LevelItem {
		if err := s.linkNames(ctx, tx, record, row["Writer"], "archival_record_creator", project.ID); err != nil {
			return nil, err
		}
		if err := s.linkNames(ctx, tx, record, row["Addressee"], "archival_record_person_relation", project.ID); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (s *archivalImporter) addBaseData(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord, tbl *table, row map[string]string) error {
	repository, err := s.resolveRepository(ctx, tx, tbl, row)
	if err != nil {
		return err
	}
	record.RepositoryID = &repository.ID

	record.Title = row["Title"]
	record.CreationDates = row["Date"]
	record.StartDate, record.EndDate = dates.Normalize(row["Date"])
	record.Description = row["Description"]
	record.Notes = row["Notes"]
	record.Extent = row["Extent"]

	// An explicit status must already exist; only the default is created on
	// demand.
	var publication *types.PublicationStatus
	if title := row["Publication Status"]; title != "" {
		publication, err = s.vocab.GetPublicationStatus(ctx, tx, title)
	} else {
		publication, err = s.vocab.GetOrCreatePublicationStatus(ctx, tx, s.cfg.PublicationStatus)
	}
	if err != nil {
		return err
	}
	record.PublicationStatusID = &publication.ID

	maintenance, err := s.vocab.GetOrCreateMaintenanceStatus(ctx, tx, s.cfg.MaintenanceStatus)
	if err != nil {
		return err
	}
	record.MaintenanceStatusID = &maintenance.ID

	if raRef := row["RA_Reference"]; raRef != "" {
		source, err := s.vocab.GetOrCreateReferenceSource(ctx, tx, "RA")
		if err != nil {
			return err
		}
		ref, created, err := s.references.GetOrCreate(ctx, tx, source.ID, raRef)
		if err != nil {
			return err
		}
		if !created {
			s.log.Info("DUPLICATE RA REF: reference already exists",
				"title", rowTitle(row), "ra_reference", raRef, "location", tbl.location())
		}
		record.References = append(record.References, ref)
	} else {
		s.log.Warn("MISSING RA Reference", "uuid", record.UUID, "location", tbl.location())
	}

	if calmRef := row["CALM_reference"]; calmRef != "" {
		holder, err := s.records.GetByCalmReference(ctx, tx, calmRef)
		if err != nil {
			return err
		}
		if holder != nil {
			return fmt.Errorf(
				"DUPLICATE CALM REF: record %q with CALM Reference %q from data at %s already exists as record %q",
				rowTitle(row), calmRef, tbl.location(), holder.UUID)
		}
		record.CalmReference = &calmRef
	} else {
		s.log.Warn("MISSING CALM Reference", "uuid", record.UUID, "location", tbl.location())
	}

	if languages := s.parseLanguages(row["Language"], tbl); len(languages) > 0 {
		encoded, err := json.Marshal(languages)
		if err != nil {
			return err
		}
		record.Languages = encoded
	}
	return nil
}

func (s *archivalImporter) resolveRepository(ctx context.Context, tx *gorm.DB, tbl *table, row map[string]string) (*types.Repository, error) {
	name := row["Repository"]
	var code int
	if codeCell := row["Repository Code"]; codeCell != "" {
		parsed, err := strconv.Atoi(codeCell)
		if err != nil {
			return nil, fmt.Errorf("invalid repository code %q in data at %s", codeCell, tbl.location())
		}
		code = parsed
	} else {
		known := false
		for _, repository := range s.cfg.DefaultRepositories {
			if name == repository {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf(
				"data at %s has no Repository Code column and specifies an archive other than %s",
				tbl.location(), strings.Join(s.cfg.DefaultRepositories, " or "))
		}
		code = s.cfg.RepositoryCode
	}
	return s.vocab.GetOrCreateRepository(ctx, tx, code, name)
}

// parseLanguages splits a Language cell into ISO 639-2 codes. Values are
// separated by newlines and by ", "; unknown names are logged and dropped.
func (s *archivalImporter) parseLanguages(cell string, tbl *table) []string {
	if cell == "" {
		return nil
	}
	var names []string
	for _, line := range strings.Split(cell, "\n") {
		names = append(names, strings.Split(line, ", ")...)
	}
	var codes []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "Greek" {
			name = "Greek, Modern (1453-)"
		}
		code, ok := languageCodes[name]
		if !ok {
			s.log.Warn("Language not found", "language", name, "location", tbl.location())
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// linkNames resolves a Writer or Addressee cell into entities and links
// each to the record in the given role. A cell may name several people
// separated by "|" or ";".
func (s *archivalImporter) linkNames(ctx context.Context, tx *gorm.DB, record *types.ArchivalRecord, cell, joinTable string, projectID uuid.UUID) error {
	cell = strings.NewReplacer("[", "", "]", "").Replace(cell)
	cell = reSpace.ReplaceAllString(cell, " ")
	cell = strings.ReplaceAll(cell, ";", "|")
	for _, name := range strings.Split(cell, "|") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		entity, _, err := s.resolver.GetOrCreateByDisplayName(ctx, tx, name, s.cfg.Language, s.cfg.Script, &projectID)
		if err != nil {
			return err
		}
		if entity == nil {
			continue
		}
		if err := s.records.AddEntityLink(ctx, tx, joinTable, record.ID, entity.ID); err != nil {
			return err
		}
	}
	return nil
}

// linkParent sets the record's parent pointer from its CALM reference,
// formed by dropping the reference's last "/"-separated segment.
func (s *archivalImporter) linkParent(ctx context.Context, tx *gorm.DB, c *createdRecord) error {
	record := c.record
	if record.CalmReference == nil || !strings.Contains(*record.CalmReference, "/") {
		return nil
	}
	calmRef := *record.CalmReference
	if record.Level == types.LevelCollection {
		s.log.Warn("Collection record has CALM reference containing a slash; check for hierarchy violation",
			"calm_reference", calmRef, "location", c.location)
		return nil
	}
	parentRef := calmRef[:strings.LastIndex(calmRef, "/")]
	parent, err := s.records.GetByCalmReference(ctx, tx, parentRef)
	if errors.Is(err, repos.ErrAmbiguousCalmReference) {
		s.log.Warn("Parent CALM reference matches multiple records; skipping",
			"calm_reference", calmRef, "parent_reference", parentRef, "location", c.location)
		return nil
	}
	if err != nil {
		return err
	}
	if parent == nil {
		s.log.Warn("MISSING PARENT: parent CALM reference does not exist",
			"calm_reference", calmRef, "parent_reference", parentRef, "location", c.location)
		return nil
	}

	switch parent.Level {
	case types.LevelCollection:
		record.ParentCollectionID = &parent.ID
	case types.LevelSeries:
		record.ParentSeriesID = &parent.ID
	case types.LevelFile:
		if record.Level == types.LevelSeries {
			return fmt.Errorf(
				"hierarchy mismatch: series record %q with reference to file %q in data at %s",
				calmRef, parentRef, c.location)
		}
		record.ParentFileID = &parent.ID
	default:
		return fmt.Errorf(
			"hierarchy mismatch: record %q with reference to item %q in data at %s",
			calmRef, parentRef, c.location)
	}
	return s.records.Save(ctx, tx, record)
}

func rowTitle(row map[string]string) string {
	if title := row["Title"]; title != "" {
		return title
	}
	return "[no title]"
}
