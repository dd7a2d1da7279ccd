package di

import (
	"github.com/termlog/cirstore/frontend"
)

func (c *Container) GetHTTPServer() *frontend.RPCServer {
	if c.httpServer != nil {
		return c.httpServer
	}
	server, service := frontend.NewServer(c.GetPtyStore(), c.config.DefaultMaxSize)
	c.httpServer = server
	c.dataService = service
	return server
}

func (c *Container) GetDataService() *frontend.DataService {
	if c.dataService == nil {
		c.GetHTTPServer()
	}
	return c.dataService
}
