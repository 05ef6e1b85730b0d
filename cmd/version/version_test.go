package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	assert.Contains(t, info, Version)
	assert.Contains(t, info, APIVersion)
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}
