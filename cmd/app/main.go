package main

import (
	"github.com/humanbelnik/kinoreco/internal/app"
	"github.com/humanbelnik/kinoreco/internal/config"
)

func main() {
	app.Go(config.Load())
}
