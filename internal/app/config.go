package app

import (
	"github.com/gpp-archive/autharch/internal/importer"
	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/utils"
)

type Config struct {
	ListenAddr string
	Importer   importer.Config
}

func LoadConfig(log *logger.Logger) Config {
	listenAddr := utils.GetEnv("LISTEN_ADDR", ":8080", log)

	importerCfg := importer.DefaultConfig()
	importerCfg.Language = utils.GetEnv("IMPORT_LANGUAGE", importerCfg.Language, log)
	importerCfg.Script = utils.GetEnv("IMPORT_SCRIPT", importerCfg.Script, log)
	importerCfg.RepositoryCode = utils.GetEnvAsInt("DEFAULT_REPOSITORY_CODE", importerCfg.RepositoryCode, log)
	importerCfg.Actor = utils.GetEnv("IMPORT_ACTOR", importerCfg.Actor, log)

	return Config{
		ListenAddr: listenAddr,
		Importer:   importerCfg,
	}
}
