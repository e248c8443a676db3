//go:build gojson

package benchmarks_test

import (
	serdify "github.com/reoring/serdify"
	drv "github.com/reoring/serdify/source/gojson"
)

func init() {
	serdify.SetJSONDriver(drv.Driver())
}
