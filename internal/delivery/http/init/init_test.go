//go:build !integration
// +build !integration

package http_init

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type ControllerPoolSuite struct {
	suite.Suite
}

func TestControllerPoolSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.RunSuite(t, new(ControllerPoolSuite))
}

type recordingController struct {
	registered int
	group      *gin.RouterGroup
}

func (c *recordingController) RegisterRoutes(router *gin.RouterGroup) {
	c.registered++
	c.group = router
}

func (s *ControllerPoolSuite) TestRegisterMountsEveryController(t provider.T) {
	t.Parallel()

	pool := NewControllerPool()
	first := &recordingController{}
	second := &recordingController{}
	pool.Add(first)
	pool.Add(second)

	pool.Register()

	assert.Equal(t, 1, first.registered)
	assert.Equal(t, 1, second.registered)
	assert.Equal(t, apiPrefix, first.group.BasePath())
	assert.Same(t, first.group, second.group)
}
