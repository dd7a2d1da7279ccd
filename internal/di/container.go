package di

import (
	"os"
	"path/filepath"

	"github.com/termlog/cirstore/frontend"
	"github.com/termlog/cirstore/ptystore"
	"github.com/termlog/cirstore/utils"
	"github.com/termlog/cirstore/utils/log"
)

type Container struct {
	config      *utils.CirConfig
	absRootDir  string
	ptyStore    *ptystore.Store
	dataService *frontend.DataService
	httpServer  *frontend.RPCServer
}

func NewContainer(cfg *utils.CirConfig) *Container {
	return &Container{config: cfg}
}

func (c *Container) Config() *utils.CirConfig {
	return c.config
}

func (c *Container) GetAbsRootDir() string {
	if c.absRootDir != "" {
		return c.absRootDir
	}
	relRootDir := c.config.RootDirectory

	// rootDir is the absolute path to the data directory.
	// e.g. rootDir = "/home/user/.cirstore"
	rootDir, err := filepath.Abs(filepath.Clean(relRootDir))
	if err != nil {
		log.Error("Cannot take absolute path of root directory %s", err.Error())
	} else {
		log.Info("Root Directory: %s", rootDir)
		const ownerOnly = 0o700
		err = os.MkdirAll(rootDir, ownerOnly)
		if err != nil {
			log.Error("Could not create root directory: %s", err.Error())
			panic(err)
		}
	}
	c.absRootDir = rootDir
	return c.absRootDir
}
