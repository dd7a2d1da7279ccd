package di

import (
	"github.com/termlog/cirstore/ptystore"
	"github.com/termlog/cirstore/utils/log"
)

func (c *Container) GetPtyStore() *ptystore.Store {
	if c.ptyStore != nil {
		return c.ptyStore
	}
	store, err := ptystore.New(ptystore.Config{
		HomeDir:        c.GetAbsRootDir(),
		TempDir:        c.config.TempDirectory,
		DefaultMaxSize: c.config.DefaultMaxSize,
		LockTimeout:    c.config.LockTimeout,
	})
	if err != nil {
		log.Error("Could not create pty store: %s", err.Error())
		panic(err)
	}
	c.ptyStore = store
	return c.ptyStore
}
