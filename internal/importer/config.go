package importer

import "github.com/gpp-archive/autharch/internal/types"

// Config carries the fallback values applied where the source data is
// silent. Imports never read ambient state; everything configurable comes
// in here.
type Config struct {
	// Language and Script are applied to every imported record and to
	// every entity created while resolving names.
	Language string
	Script   string

	// PublicationStatus is used for rows without a Publication Status
	// column. MaintenanceStatus is applied to every created record.
	PublicationStatus string
	MaintenanceStatus string

	// RepositoryCode is assumed for the repositories named in
	// DefaultRepositories when the data carries no Repository Code column.
	// Any other repository without a code is a hard error.
	RepositoryCode      int
	DefaultRepositories []string

	// Actor is recorded on the initial revisions written for imported
	// objects.
	Actor string
}

func DefaultConfig() Config {
	return Config{
		Language:            "eng",
		Script:              "Latin",
		PublicationStatus:   types.StatusPublished,
		MaintenanceStatus:   types.StatusNew,
		RepositoryCode:      262,
		DefaultRepositories: []string{"Royal Archives", "Royal Library"},
		Actor:               "import",
	}
}
