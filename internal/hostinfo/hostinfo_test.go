package hostinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	h := Detect()
	require.Equal(t, runtime.GOOS, h.OS)
	require.Equal(t, runtime.GOARCH, h.Arch)
	require.Equal(t, runtime.NumCPU(), h.Threads())
}

func TestThreadsFallback(t *testing.T) {
	require.Equal(t, 1, Host{}.Threads())
}
