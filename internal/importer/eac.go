package importer

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/services"
	"github.com/gpp-archive/autharch/internal/types"
)

// EAC-CPF document model, covering the subset of urn:isbn:1-931666-33-4
// that the authority data uses.
//
// Not supported, matching the database model: complex dates (dateSet,
// multiple date or dateRange elements per holder) and date descriptive
// notes.
type eacDocument struct {
	XMLName xml.Name             `xml:"urn:isbn:1-931666-33-4 eac-cpf"`
	Control eacControl           `xml:"control"`
	CPF     []eacCPFDescription  `xml:"cpfDescription"`
	Multi   *eacMultipleIdentity `xml:"multipleIdentities"`
}

type eacMultipleIdentity struct {
	CPF []eacCPFDescription `xml:"cpfDescription"`
}

// descriptions returns every cpfDescription in document order, whether or
// not the document wraps them in multipleIdentities.
func (d *eacDocument) descriptions() []eacCPFDescription {
	if d.Multi != nil {
		return append(append([]eacCPFDescription{}, d.CPF...), d.Multi.CPF...)
	}
	return d.CPF
}

type eacControl struct {
	MaintenanceStatus   string                 `xml:"maintenanceStatus"`
	PublicationStatus   string                 `xml:"publicationStatus"`
	LanguageDeclaration eacLanguageUsed        `xml:"languageDeclaration"`
	Sources             []eacSource            `xml:"sources>source"`
	RightsDeclarations  []eacRightsDeclaration `xml:"rightsDeclaration"`
}

type eacSource struct {
	Href        string `xml:"http://www.w3.org/1999/xlink href,attr"`
	SourceEntry string `xml:"sourceEntry"`
}

type eacRightsDeclaration struct {
	LocalType  string   `xml:"localType,attr"`
	Paragraphs []string `xml:"descriptiveNote>p"`
}

type eacCPFDescription struct {
	Identity    eacIdentity     `xml:"identity"`
	Description *eacDescription `xml:"description"`
	Relations   []eacRelation   `xml:"relations>cpfRelation"`
}

type eacIdentity struct {
	EntityType  string         `xml:"entityType"`
	NameEntries []eacNameEntry `xml:"nameEntry"`
}

type eacNameEntry struct {
	LocalType  string    `xml:"localType,attr"`
	Lang       string    `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	ScriptCode string    `xml:"scriptCode,attr"`
	Parts      []eacPart `xml:"part"`
	UseDates   *eacDates `xml:"useDates"`
}

type eacPart struct {
	LocalType string `xml:"localType,attr"`
	Value     string `xml:",chardata"`
}

type eacDates struct {
	Date      *eacDate      `xml:"date"`
	DateRange *eacDateRange `xml:"dateRange"`
}

type eacDate struct {
	StandardDate string `xml:"standardDate,attr"`
	Value        string `xml:",chardata"`
}

type eacDateRange struct {
	FromDate *eacDate `xml:"fromDate"`
	ToDate   *eacDate `xml:"toDate"`
}

type eacDescription struct {
	ExistDates        *eacDates             `xml:"existDates"`
	Places            []eacPlace            `xml:"places>place"`
	LanguagesUsed     []eacLanguageUsed     `xml:"languagesUsed>languageUsed"`
	LocalDescriptions []eacLocalDescription `xml:"localDescription"`
	BiogHists         []eacBiogHist         `xml:"biogHist"`
}

type eacPlace struct {
	PlaceEntry string   `xml:"placeEntry"`
	PlaceRole  string   `xml:"placeRole"`
	Date       *eacDate `xml:"date"`
}

type eacLanguageUsed struct {
	Language eacLanguageCode `xml:"language"`
	Script   eacScriptCode   `xml:"script"`
}

type eacLanguageCode struct {
	Code  string `xml:"languageCode,attr"`
	Value string `xml:",chardata"`
}

type eacScriptCode struct {
	Code  string `xml:"scriptCode,attr"`
	Value string `xml:",chardata"`
}

type eacLocalDescription struct {
	LocalType string        `xml:"localType,attr"`
	Term      string        `xml:"term"`
	DateRange *eacDateRange `xml:"dateRange"`
	Citation  string        `xml:"citation"`
}

type eacBiogHist struct {
	Abstract   string         `xml:"abstract"`
	Citation   string         `xml:"citation"`
	Paragraphs []string       `xml:"p"`
	ChronItems []eacChronItem `xml:"chronList>chronItem"`
}

type eacChronItem struct {
	Event      string        `xml:"event"`
	PlaceEntry string        `xml:"placeEntry"`
	Date       *eacDate      `xml:"date"`
	DateRange  *eacDateRange `xml:"dateRange"`
}

type eacRelation struct {
	CPFRelationType string   `xml:"cpfRelationType,attr"`
	RelationEntry   string   `xml:"relationEntry"`
	Paragraphs      []string `xml:"descriptiveNote>p"`
}

// Mapping between terminology used in EAC-CPF and titles used in the
// vocabularies.
var eacTitleMap = map[string]string{
	"ordinalNumber": "ordinal number",
	"pretitle":      "pre-title",
	"properTitle":   "proper title",
	"Transgender":   "Transgender people",
}

// Order that name parts are joined together to form a display name. DATE is
// the year range of the existence dates, not the use dates.
var namePartsOrder = []string{
	"surname", "forename", "ordinalNumber", "DATE", "properTitle", "epithet",
}

// EACImporter imports entities from EAC-CPF XML files. Since entities may
// relate to each other, the import is two-phase: every entity is first
// created with its own data, then every entity's relations are resolved.
type EACImporter interface {
	Import(ctx context.Context, projectSlug string, paths []string) error
}

type eacImporter struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         Config
	projects    repos.ProjectRepo
	entities    repos.EntityRepo
	vocab       repos.VocabRepo
	resolver    services.EntityResolver
	revisionSvc services.RevisionService
}

func NewEACImporter(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg Config,
	projects repos.ProjectRepo,
	entities repos.EntityRepo,
	vocab repos.VocabRepo,
	resolver services.EntityResolver,
	revisionSvc services.RevisionService,
) EACImporter {
	serviceLog := baseLog.With("service", "EACImporter")
	return &eacImporter{
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

// eacImport carries one parsed document between the two phases, with the
// created identities in document order so relations can attach to the
// right one.
type eacImport struct {
	path       string
	doc        *eacDocument
	entity     *types.Entity
	identities []*types.Identity
}

func (s *eacImporter) Import(ctx context.Context, projectSlug string, paths []string) error {
	project, err := s.projects.GetBySlug(ctx, nil, projectSlug)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %q does not exist", projectSlug)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var imports []*eacImport
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

func parseEAC(path string) (*eacDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc eacDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document %q is not well-formed EAC-CPF: %w", path, err)
	}
	if len(doc.descriptions()) == 0 {
		return nil, fmt.Errorf("document %q is not valid EAC-CPF: no cpfDescription", path)
	}
	return &doc, nil
}

func (s *eacImporter) importEntity(ctx context.Context, tx *gorm.DB, project *types.Project, path string) (*eacImport, error) {
	doc, err := parseEAC(path)
	if err != nil {
		return nil, err
	}
	descriptions := doc.descriptions()

	entityTypeTitle := strings.TrimSpace(descriptions[0].Identity.EntityType)
	if entityTypeTitle == "" {
		return nil, fmt.Errorf("%q has no entity type", path)
	}
	entityType, err := s.vocab.GetOrCreateEntityType(ctx, tx, vocabTitle(entityTypeTitle))
	if err != nil {
		return nil, err
	}

	entity := &types.Entity{
		ID:           uuid.New(),
		EntityTypeID: entityType.ID,
		ProjectID:    &project.ID,
	}
	entity.Control, err = s.buildControl(ctx, tx, entity.ID, &doc.Control)
	if err != nil {
		return nil, err
	}

	copyright := biogHistCopyright(&doc.Control)
	imp := &eacImport{path: path, doc: doc, entity: entity}
	for index, description := range descriptions {
		identity, err := s.buildIdentity(ctx, tx, entity.ID, description, index == 0, copyright)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", path, err)
		}
		entity.Identities = append(entity.Identities, identity)
		imp.identities = append(imp.identities, identity)
	}

	if _, err := s.entities.Create(ctx, tx, entity); err != nil {
		return nil, err
	}
	return imp, nil
}

func (s *eacImporter) buildControl(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, control *eacControl) (*types.Control, error) {
	maintenanceTitle := strings.TrimSpace(control.MaintenanceStatus)
	if maintenanceTitle == "" {
		return nil, fmt.Errorf("control has no maintenance status")
	}
	publicationTitle := strings.TrimSpace(control.PublicationStatus)
	if publicationTitle == "" {
		return nil, fmt.Errorf("control has no publication status")
	}
	maintenance, err := s.vocab.GetOrCreateMaintenanceStatus(ctx, tx, maintenanceTitle)
	if err != nil {
		return nil, err
	}
	publication, err := s.vocab.GetOrCreatePublicationStatus(ctx, tx, publicationTitle)
	if err != nil {
		return nil, err
	}

	built := &types.Control{
		ID:                  uuid.New(),
		EntityID:            entityID,
		MaintenanceStatusID: maintenance.ID,
		PublicationStatusID: publication.ID,
		Language:            control.LanguageDeclaration.Language.Code,
		Script:              control.LanguageDeclaration.Script.Code,
	}
	for _, source := range control.Sources {
		built.Sources = append(built.Sources, &types.Source{
			ID:        uuid.New(),
			ControlID: built.ID,
			Name:      normaliseSpace(source.SourceEntry),
			URL:       source.Href,
		})
	}
	return built, nil
}

// biogHistCopyright renders the paragraphs of the control's biogHist
// rights declaration, which the source data uses as the biography's
// copyright statement.
func biogHistCopyright(control *eacControl) string {
	var parts []string
	for _, rights := range control.RightsDeclarations {
		if rights.LocalType != "biogHist" {
			continue
		}
		for _, paragraph := range rights.Paragraphs {
			parts = append(parts, fmt.Sprintf("<p>%s</p>", normaliseSpace(paragraph)))
		}
	}
	return strings.Join(parts, "\n")
}

func (s *eacImporter) buildIdentity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, cpf eacCPFDescription, preferred bool, copyright string) (*types.Identity, error) {
	identity := &types.Identity{
		ID:                uuid.New(),
		EntityID:          entityID,
		PreferredIdentity: preferred,
	}
	if cpf.Description != nil && cpf.Description.ExistDates != nil {
		applyDates(cpf.Description.ExistDates, &identity.DisplayDate)
	}

	// A nameEntry[@localType='directOrder'] is not a name of its own; it
	// provides a display name for the authorised entry.
	directOrder := ""
	var entries []eacNameEntry
	for _, entry := range cpf.Identity.NameEntries {
		if entry.LocalType == "directOrder" {
			if directOrder == "" {
				directOrder = entryText(entry)
			}
			continue
		}
		entries = append(entries, entry)
	}

	for index, entry := range entries {
		authorised := index == 0
		nameEntry, err := s.buildNameEntry(ctx, tx, identity.ID, entry, cpf.Description, directOrder, authorised)
		if err != nil {
			return nil, err
		}
		identity.NameEntries = append(identity.NameEntries, nameEntry)
	}

	if cpf.Description != nil {
		description, err := s.buildDescription(cpf.Description, identity.ID, copyright)
		if err != nil {
			return nil, err
		}
		identity.Descriptions = append(identity.Descriptions, description)
	}
	return identity, nil
}

func (s *eacImporter) buildNameEntry(ctx context.Context, tx *gorm.DB, identityID uuid.UUID, entry eacNameEntry, description *eacDescription, directOrder string, authorised bool) (*types.NameEntry, error) {
	nameEntry := &types.NameEntry{
		ID:             uuid.New(),
		IdentityID:     identityID,
		AuthorisedForm: authorised,
		Language:       entry.Lang,
		Script:         entry.ScriptCode,
	}
	for _, part := range entry.Parts {
		if part.LocalType == "properTitle" {
			nameEntry.IsRoyalName = true
		}
	}
	nameEntry.DisplayName = assembleDisplayName(entry, description, directOrder, authorised)
	if entry.UseDates != nil {
		applyDates(entry.UseDates, &nameEntry.DisplayDate)
	}
	for _, part := range entry.Parts {
		if part.LocalType == "" {
			continue
		}
		partType, err := s.vocab.GetOrCreateNamePartType(ctx, tx, vocabTitle(part.LocalType))
		if err != nil {
			return nil, err
		}
		nameEntry.Parts = append(nameEntry.Parts, &types.NamePart{
			ID:             uuid.New(),
			NameEntryID:    nameEntry.ID,
			NamePartTypeID: partType.ID,
			Part:           normaliseSpace(part.Value),
		})
	}
	return nameEntry, nil
}

func (s *eacImporter) buildDescription(source *eacDescription, identityID uuid.UUID, copyright string) (*types.Description, error) {
	description := &types.Description{
		ID:         uuid.New(),
		IdentityID: identityID,
	}
	for _, local := range source.LocalDescriptions {
		if local.LocalType != "gender" {
			continue
		}
		gender := &types.LocalDescription{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			Gender:        vocabTitle(normaliseSpace(local.Term)),
			Citation:      normaliseSpace(local.Citation),
		}
		if local.DateRange != nil {
			applyDates(&eacDates{DateRange: local.DateRange}, &gender.DisplayDate)
		}
		description.LocalDescriptions = append(description.LocalDescriptions, gender)
	}
	for _, place := range source.Places {
		name := normaliseSpace(place.PlaceEntry)
		if name == "" {
			continue
		}
		built := &types.Place{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			PlaceName:     name,
			Role:          normaliseSpace(place.PlaceRole),
		}
		if place.Date != nil {
			built.DisplayDate = strings.TrimSpace(place.Date.Value)
		}
		description.Places = append(description.Places, built)
	}
	for _, used := range source.LanguagesUsed {
		description.LanguagesScripts = append(description.LanguagesScripts, &types.LanguageScript{
			ID:            uuid.New(),
			DescriptionID: description.ID,
			Language:      used.Language.Code,
			Script:        used.Script.Code,
		})
	}
	for _, biogHist := range source.BiogHists {
		description.BiographyHistory = s.buildBiogHist(description.ID, biogHist, copyright)
		for _, item := range biogHist.ChronItems {
			event := &types.Event{
				ID:            uuid.New(),
				DescriptionID: description.ID,
				Event:         normaliseSpace(item.Event),
				PlaceName:     normaliseSpace(item.PlaceEntry),
			}
			if item.Date != nil {
				event.DisplayDate = strings.TrimSpace(item.Date.Value)
			}
			if item.DateRange != nil {
				applyDates(&eacDates{DateRange: item.DateRange}, &event.DisplayDate)
			}
			description.Events = append(description.Events, event)
		}
		break
	}
	return description, nil
}

func (s *eacImporter) buildBiogHist(descriptionID uuid.UUID, biogHist eacBiogHist, copyright string) *types.BiographyHistory {
	var content strings.Builder
	for _, paragraph := range biogHist.Paragraphs {
		fmt.Fprintf(&content, "<p>%s</p>", normaliseSpace(paragraph))
	}
	return &types.BiographyHistory{
		ID:            uuid.New(),
		DescriptionID: descriptionID,
		Abstract:      normaliseSpace(biogHist.Abstract),
		Sources:       normaliseSpace(biogHist.Citation),
		Content:       content.String(),
		Copyright:     copyright,
	}
}

func (s *eacImporter) importRelations(ctx context.Context, tx *gorm.DB, project *types.Project, imp *eacImport) error {
	for index, cpf := range imp.doc.descriptions() {
		identity := imp.identities[index]
		for _, relation := range cpf.Relations {
			if err := s.importRelation(ctx, tx, project, imp.path, identity, relation); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *eacImporter) importRelation(ctx context.Context, tx *gorm.DB, project *types.Project, path string, identity *types.Identity, relation eacRelation) error {
	relationTypeTitle := strings.TrimSpace(relation.CPFRelationType)
	if relationTypeTitle == "" {
		return fmt.Errorf("document %q has a relation with no cpfRelationType", path)
	}
	relationType, err := s.vocab.GetOrCreateEntityRelationType(ctx, tx, vocabTitle(relationTypeTitle))
	if err != nil {
		return err
	}
	name := normaliseSpace(relation.RelationEntry)
	related, _, err := s.resolver.GetOrCreateByDisplayName(ctx, tx, name, s.cfg.Language, s.cfg.Script, &project.ID)
	if err != nil {
		return err
	}
	if related == nil {
		return fmt.Errorf(
			"document %q references related entity with name %q that has multiple matches", path, name)
	}
	built := &types.Relation{
		ID:              uuid.New(),
		IdentityID:      identity.ID,
		RelationTypeID:  relationType.ID,
		RelatedEntityID: &related.ID,
		RelationDetail:  normaliseSpace(strings.Join(relation.Paragraphs, " ")),
	}
	return tx.WithContext(ctx).Create(built).Error
}

// assembleDisplayName bodges a display name together from typed name parts,
// joined in catalogue order, unless the document provides a directOrder
// name for the authorised entry.
func assembleDisplayName(entry eacNameEntry, description *eacDescription, directOrder string, authorised bool) string {
	if authorised && directOrder != "" {
		return directOrder
	}
	displayName := ""
	for _, partType := range namePartsOrder {
		part := ""
		if partType == "DATE" {
			part = existYears(description)
		} else {
			for _, candidate := range entry.Parts {
				if candidate.LocalType == partType {
					part = normaliseSpace(candidate.Value)
					break
				}
			}
		}
		if part == "" {
			continue
		}
		switch {
		case displayName == "":
			displayName = part
		case partType == "ordinalNumber":
			displayName = displayName + " " + part
		default:
			displayName = displayName + ", " + part
		}
	}
	return displayName
}

// existYears renders the existence dates as a year range for use as the
// DATE part of a display name.
func existYears(description *eacDescription) string {
	if description == nil || description.ExistDates == nil {
		return ""
	}
	if dateRange := description.ExistDates.DateRange; dateRange != nil {
		from, to := "", ""
		if dateRange.FromDate != nil && len(dateRange.FromDate.StandardDate) >= 4 {
			from = dateRange.FromDate.StandardDate[:4]
		}
		if dateRange.ToDate != nil && len(dateRange.ToDate.StandardDate) >= 4 {
			to = dateRange.ToDate.StandardDate[:4]
		}
		if from == "" && to == "" {
			return ""
		}
		return from + "-" + to
	}
	if date := description.ExistDates.Date; date != nil {
		return date.StandardDate
	}
	return ""
}

// applyDates renders a date or date range into a display date string.
func applyDates(dates *eacDates, displayDate *string) {
	if dates.Date != nil {
		*displayDate = strings.TrimSpace(dates.Date.Value)
		return
	}
	if dates.DateRange == nil {
		return
	}
	display := ""
	if from := dates.DateRange.FromDate; from != nil {
		display = strings.TrimSpace(from.Value)
	}
	if to := dates.DateRange.ToDate; to != nil {
		display = display + " - " + strings.TrimSpace(to.Value)
	}
	*displayDate = strings.TrimSpace(display)
}

func entryText(entry eacNameEntry) string {
	var parts []string
	for _, part := range entry.Parts {
		if text := normaliseSpace(part.Value); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func vocabTitle(title string) string {
	if mapped, ok := eacTitleMap[title]; ok {
		return mapped
	}
	return title
}

func normaliseSpace(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}
