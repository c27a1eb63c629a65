package sysinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// Info is a coarse description of the machine the service runs on.
type Info struct {
	Platform   string `json:"platform"`
	CPU        string `json:"cpu"`
	CPUs       int    `json:"cpus"`
	Memory     string `json:"memory"`
	UptimeSecs uint64 `json:"uptime_seconds"`
	GoVersion  string `json:"go_version"`
}

// Collect gathers host details. Probe failures leave the field empty; the
// result is informational only.
func Collect() Info {
	info := Info{
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}

	if h, err := host.Info(); err == nil {
		info.Platform = h.Platform
		info.UptimeSecs = h.Uptime
	}
	if c, err := cpu.Info(); err == nil && len(c) > 0 {
		info.CPU = c[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.Memory = fmt.Sprintf("%d GB", vm.Total/1024/1024/1024)
	}
	return info
}
