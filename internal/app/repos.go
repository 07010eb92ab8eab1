package app

import (
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
)

type Repos struct {
	Project   repos.ProjectRepo
	Entity    repos.EntityRepo
	Record    repos.RecordRepo
	Reference repos.ReferenceRepo
	Vocab     repos.VocabRepo
	Revision  repos.RevisionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Project:   repos.NewProjectRepo(db, log),
		Entity:    repos.NewEntityRepo(db, log),
		Record:    repos.NewRecordRepo(db, log),
		Reference: repos.NewReferenceRepo(db, log),
		Vocab:     repos.NewVocabRepo(db, log),
		Revision:  repos.NewRevisionRepo(db, log),
	}
}
