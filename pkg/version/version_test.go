package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	i := Info{Version: "1.2.3", GitCommit: "abc", BuildTime: "now", GoVersion: "go1.23.1", Platform: "linux/amd64"}
	assert.Equal(t, "ctxpack version 1.2.3 (commit: abc) built at now with go1.23.1 on linux/amd64", i.String())
}

func TestGet(t *testing.T) {
	i := Get()
	assert.Equal(t, Version, i.Version)
	assert.Equal(t, runtime.Version(), i.GoVersion)
	assert.True(t, strings.HasPrefix(i.Platform, runtime.GOOS+"/"))
}
