// Package http_init owns the gin engine and mounts every controller under
// the versioned API prefix.
package http_init

import (
	"log"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// Controller is anything that can attach its routes to the shared group.
type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	controllers []Controller
	group       *gin.RouterGroup
	engine      *gin.Engine
}

func NewControllerPool() *ControllerPool {
	engine := gin.Default()
	return &ControllerPool{
		controllers: make([]Controller, 0, 4),
		group:       engine.Group(apiPrefix),
		engine:      engine,
	}
}

func (p *ControllerPool) Add(c Controller) {
	p.controllers = append(p.controllers, c)
}

// Register mounts every added controller. Call once, before RunAll.
func (p *ControllerPool) Register() {
	for _, c := range p.controllers {
		c.RegisterRoutes(p.group)
	}
}

// RunAll serves until the listener fails; it does not return otherwise.
func (p *ControllerPool) RunAll(port string) {
	if err := p.engine.Run(":" + port); err != nil {
		log.Fatalf("failed to run HTTP server: %v", err)
	}
}
