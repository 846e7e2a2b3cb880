package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file soft limit. The export pipeline
// keeps ffmpeg pipes, asset files and temp WAVs open at the same time.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// GetBestH264Encoder probes ffmpeg for hardware encoders and falls back to
// libx264. Priority: VideoToolbox (macOS), NVENC (NVIDIA), software.
func GetBestH264Encoder() string {
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	cmd := exec.Command("ffmpeg", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// RenderWorkers picks a rasterizer pool size from logical CPU count, capped
// so in-flight frame buffers stay well under available memory.
func RenderWorkers(frameBytes int) int {
	workers := 4
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}

	if vm, err := mem.VirtualMemory(); err == nil && frameBytes > 0 {
		// Each worker holds a couple of frames plus channel slack.
		budget := int(vm.Available / 4 / uint64(frameBytes*3))
		if budget < 1 {
			budget = 1
		}
		if workers > budget {
			workers = budget
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}
