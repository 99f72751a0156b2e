package jotter

import (
	_ "embed"
)

// Version is the release of this module, read from the VERSION file.
//
//go:embed VERSION
var Version string
