// Package hostinfo describes the machine a benchmark ran on.
package hostinfo

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Host is recorded in run.json next to the measurements.
type Host struct {
	OS             string   `json:"os"`
	Arch           string   `json:"arch"`
	NumCPU         int      `json:"num_cpu"`
	Brand          string   `json:"brand"`
	Vendor         string   `json:"vendor"`
	PhysicalCores  int      `json:"physical_cores"`
	LogicalCores   int      `json:"logical_cores"`
	ThreadsPerCore int      `json:"threads_per_core"`
	CacheLine      int      `json:"cache_line"`
	L1D            int      `json:"l1d_bytes"`
	L2             int      `json:"l2_bytes"`
	L3             int      `json:"l3_bytes"`
	Features       []string `json:"features,omitempty"`
}

// Detect queries the running CPU.
func Detect() Host {
	c := cpuid.CPU
	return Host{
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		NumCPU:         runtime.NumCPU(),
		Brand:          c.BrandName,
		Vendor:         c.VendorString,
		PhysicalCores:  c.PhysicalCores,
		LogicalCores:   c.LogicalCores,
		ThreadsPerCore: c.ThreadsPerCore,
		CacheLine:      c.CacheLine,
		L1D:            c.Cache.L1D,
		L2:             c.Cache.L2,
		L3:             c.Cache.L3,
		Features:       c.FeatureSet(),
	}
}

// Threads is the thread count a sweep should default to.
func (h Host) Threads() int {
	if h.NumCPU > 0 {
		return h.NumCPU
	}
	return 1
}
