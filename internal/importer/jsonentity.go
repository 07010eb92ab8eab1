package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/services"
	"github.com/gpp-archive/autharch/internal/types"
)

const (
	geonamesBaseURL = "http://www.geonames.org/"
	ukatBaseURL     = "http://www.ukat.org.uk/thesaurus/concept/"
)

// Gender terms used in the source JSON, mapped onto the vocabulary titles.
var jsonGenderTitles = map[string]string{
	"male":                  "Men",
	"women (wimmin, womyn)": "Women",
}

var reLanguageScript = regexp.MustCompile(`^([^(]+) \(([^)]+)\)$`)

// jsonValue is one value of a property list in the entity JSON. Which of
// its fields is populated varies by property.
type jsonValue struct {
	Value        string `json:"@value"`
	ID           string `json:"@id"`
	Label        string `json:"o:label"`
	DisplayTitle string `json:"display_title"`
}

// jsonEntityDoc is a parsed entity document: property name to value list.
// Top-level keys with other shapes are ignored.
type jsonEntityDoc map[string]json.RawMessage

func (d jsonEntityDoc) values(key string) []jsonValue {
	raw, ok := d[key]
	if !ok {
		return nil
	}
	var values []jsonValue
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func (v jsonValue) title() string {
	if v.Value != "" {
		return v.Value
	}
	return v.Label
}

// JSONEntityImporter imports entities from the JSON produced by the
// georgian API. As with EAC-CPF, the import is two-phase so entities can
// relate to each other regardless of file order.
type JSONEntityImporter interface {
	Import(ctx context.Context, projectSlug string, paths []string) error
}

type jsonEntityImporter struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         Config
	projects    repos.ProjectRepo
	entities    repos.EntityRepo
	vocab       repos.VocabRepo
	resolver    services.EntityResolver
	revisionSvc services.RevisionService
}

func NewJSONEntityImporter(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg Config,
	projects repos.ProjectRepo,
	entities repos.EntityRepo,
	vocab repos.VocabRepo,
	resolver services.EntityResolver,
	revisionSvc services.RevisionService,
) JSONEntityImporter {
	serviceLog := baseLog.With("service", "JSONEntityImporter")
	return &jsonEntityImporter{
		db:          db,
		log:         serviceLog,
		cfg:         cfg,
		projects:    projects,
		entities:    entities,
		vocab:       vocab,
		resolver:    resolver,
		revisionSvc: revisionSvc,
	}
}

type jsonImport struct {
	path     string
	doc      jsonEntityDoc
	entity   *types.Entity
	identity *types.Identity
}

func (s *jsonEntityImporter) Import(ctx context.Context, projectSlug string, paths []string) error {
	project, err := s.projects.GetBySlug(ctx, nil, projectSlug)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %q does not exist", projectSlug)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var imports []*jsonImport
		for _, path := range paths {
			imp, err := s.importEntity(ctx, tx, project, path)
			if err != nil {
				return err
			}
			imports = append(imports, imp)
		}
		for _, imp := range imports {
			if err := s.importRelations(ctx, tx, project, imp); err != nil {
				return err
			}
		}
		for _, imp := range imports {
			comment := fmt.Sprintf("Initial revision from import of %q.", imp.path)
			if _, err := s.revisionSvc.Record(ctx, tx, services.RevisionObjectEntity,
				imp.entity.ID, s.cfg.Actor, comment, imp.entity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *jsonEntityImporter) importEntity(ctx context.Context, tx *gorm.DB, project *types.Project, path string) (*jsonImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc jsonEntityDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document %q is not valid entity JSON: %w", path, err)
	}

	entityTypes := doc.values("eac:p.entityType")
	if len(entityTypes) == 0 {
		return nil, fmt.Errorf("document %q has no entity type information", path)
	}
	entityType, err := s.vocab.GetOrCreateEntityType(ctx, tx, entityTypes[0].title())
	if err != nil {
		return nil, err
	}

	entity := &types.Entity{
		ID:           uuid.New(),
		EntityTypeID: entityType.ID,
		ProjectID:    &project.ID,
	}
	entity.Control, err = s.buildControl(ctx, tx, entity.ID, doc)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", path, err)
	}

	existDates := doc.values("eac:p.existDates")
	if len(existDates) > 1 {
		return nil, fmt.Errorf(
			"document %q has multiple existDates; we are not equipped to handle multiple identities as this requires", path)
	}
	identity, err := s.buildIdentity(ctx, tx, entity.ID, existDates, doc, path)
	if err != nil {
		return nil, err
	}
	entity.Identities = []*types.Identity{identity}

	if _, err := s.entities.Create(ctx, tx, entity); err != nil {
		return nil, err
	}
	return &jsonImport{path: path, doc: doc, entity: entity, identity: identity}, nil
}

func (s *jsonEntityImporter) buildControl(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, doc jsonEntityDoc) (*types.Control, error) {
	maintenanceValues := doc.values("eac:p.maintenanceStatus")
	if len(maintenanceValues) == 0 {
		return nil, fmt.Errorf("no maintenance status")
	}
	publicationValues := doc.values("eac:p.publicationStatus")
	if len(publicationValues) == 0 {
		return nil, fmt.Errorf("no publication status")
	}
	maintenance, err := s.vocab.GetOrCreateMaintenanceStatus(ctx, tx, maintenanceValues[0].title())
	if err != nil {
		return nil, err
	}
	publication, err := s.vocab.GetOrCreatePublicationStatus(ctx, tx, publicationValues[0].title())
	if err != nil {
		return nil, err
	}

	control := &types.Control{
		ID:                  uuid.New(),
		EntityID:            entityID,
		MaintenanceStatusID: maintenance.ID,
		PublicationStatusID: publication.ID,
		Language:            s.cfg.Language,
		Script:              s.cfg.Script,
	}
	for _, source := range doc.values("eac:p.source") {
		control.Sources = append(control.Sources, &types.Source{
			ID:        uuid.New(),
			ControlID: control.ID,
			Name:      source.Label,
			URL:       source.ID,
		})
	}
	return control, nil
}

func (s *jsonEntityImporter) buildIdentity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, existDates []jsonValue, doc jsonEntityDoc, path string) (*types.Identity, error) {
	identity := &types.Identity{
		ID:                uuid.New(),
		EntityID:          entityID,
		PreferredIdentity: true,
	}
	// Only the display date is kept; anything more would require parsing a
	// single string that might express a date or a range with circa,
	// floruit or unknown elements.
	if len(existDates) > 0 {
		identity.DisplayDate = normaliseSpace(existDates[0].Value)
	}

	names := append(doc.values("eac:p.nameEntry"), doc.values("eac:p.nameEntryParallel")...)
	useDates := doc.values("eac:p.useDates")
	for index, name := range names {
		entry := &types.NameEntry{
			ID:             uuid.New(),
			IdentityID:     identity.ID,
			DisplayName:    normaliseSpace(name.Value),
			AuthorisedForm: index == 0,
			Language:       s.cfg.Language,
			Script:         s.cfg.Script,
		}
		if index < len(useDates) {
			entry.DisplayDate = normaliseSpace(useDates[index].Value)
		}
		identity.NameEntries = append(identity.NameEntries, entry)
	}

	description, err := s.buildDescription(identity.ID, doc, path)
	if err != nil {
		return nil, err
	}
	identity.Descriptions = []*types.Description{description}
	return identity, nil
}

func (s *jsonEntityImporter) buildDescription(identityID uuid.UUID, doc jsonEntityDoc, path string) (*types.Description, error) {
	description := &types.Description{
		ID:         uuid.New(),
		IdentityID: identityID,
	}

	if genders := doc.values("eac:p.localDescription"); len(genders) > 0 {
		title := genders[0].title()
		if mapped, ok := jsonGenderTitles[title]; ok {
			title = mapped
		}
		description.LocalDescriptions = append(description.LocalDescriptions, &types.LocalDescription{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			Gender:        title,
		})
	}

	for _, language := range doc.values("eac:p.languageUsed") {
		match := reLanguageScript.FindStringSubmatch(normaliseSpace(language.Value))
		if match == nil {
			return nil, fmt.Errorf(
				"document %q references language %q that cannot be parsed into a language and script",
				path, language.Value)
		}
		description.LanguagesScripts = append(description.LanguagesScripts, &types.LanguageScript{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			Language:      match[1],
			Script:        match[2],
		})
	}

	placeRoles := doc.values("eac:p.placeRole")
	for index, place := range doc.values("eac:p.placeEntry") {
		built := &types.Place{
			ID:            uuid.New(),
			DescriptionID: description.ID,
		}
		if strings.HasPrefix(place.ID, geonamesBaseURL) {
			built.GeonamesID = strings.TrimPrefix(place.ID, geonamesBaseURL)
			built.PlaceName = place.title()
		} else {
			built.PlaceName = place.title()
		}
		if built.PlaceName == "" && built.GeonamesID == "" {
			s.log.Warn("Place entry has no usable name", "path", path)
			continue
		}
		if index < len(placeRoles) {
			built.Role = placeRoles[index].Value
		}
		description.Places = append(description.Places, built)
	}

	if abstracts := doc.values("eac:p.abstract"); len(abstracts) > 0 {
		biogHist := &types.BiographyHistory{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			Abstract:      abstracts[0].Value,
		}
		if citations := doc.values("eac:p.citation"); len(citations) > 0 {
			biogHist.Sources = citations[0].Value
		}
		if paragraphs := doc.values("eac:p.p"); len(paragraphs) > 0 {
			biogHist.Copyright = fmt.Sprintf("<p>%s</p>", paragraphs[0].Value)
		}
		description.BiographyHistory = biogHist
	}

	for _, function := range doc.values("eac:p.function") {
		title := function.Label
		if title == "" {
			title = function.Value
		}
		if title == "" && strings.HasPrefix(function.ID, ukatBaseURL) {
			title = strings.Trim(strings.TrimPrefix(function.ID, ukatBaseURL), "/")
		}
		if title = strings.TrimSpace(title); title == "" {
			s.log.Warn("Function has no usable title", "path", path, "uri", function.ID)
			continue
		}
		description.Functions = append(description.Functions, &types.Function{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			Title:         title,
		})
	}
	return description, nil
}

func (s *jsonEntityImporter) importRelations(ctx context.Context, tx *gorm.DB, project *types.Project, imp *jsonImport) error {
	relationTypes := imp.doc.values("eac:p.cpfRelationType")
	relationEntries := imp.doc.values("eac:p.relationEntry")
	for index, relation := range imp.doc.values("eac:p.cpfRelation") {
		if index >= len(relationTypes) || index >= len(relationEntries) {
			return fmt.Errorf("document %q has mismatched relation properties", imp.path)
		}
		relationType, err := s.vocab.GetOrCreateEntityRelationType(ctx, tx, relationTypes[index].title())
		if err != nil {
			return err
		}
		name := normaliseSpace(relationEntries[index].DisplayTitle)
		related, _, err := s.resolver.GetOrCreateByDisplayName(ctx, tx, name, s.cfg.Language, s.cfg.Script, &project.ID)
		if err != nil {
			return err
		}
		if related == nil {
			s.log.Warn("Related entity name did not resolve; skipping relation",
				"path", imp.path, "name", name)
			continue
		}
		built := &types.Relation{
			ID:              uuid.New(),
			IdentityID:      imp.identity.ID,
			RelationTypeID:  relationType.ID,
			RelatedEntityID: &related.ID,
			RelationDetail:  relation.Value,
		}
		if err := tx.WithContext(ctx).Create(built).Error; err != nil {
			return err
		}
	}
	return nil
}
