package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

var inputExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".pdf"}

// IsInput reports whether name looks like a detail page we can read.
func IsInput(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range inputExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLatestInput returns the most recently modified image or PDF in dir.
func FindLatestInput(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !IsInput(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no image or PDF files found in %s", dir)
	}

	return latestFile, nil
}

// MemoryStatus compares the memory a job needs with what the host has free.
type MemoryStatus struct {
	Required  uint64
	Available uint64
}

func (m MemoryStatus) Sufficient() bool {
	return m.Required <= m.Available
}

// CheckMemory reads the available system memory.
func CheckMemory(required uint64) (MemoryStatus, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryStatus{Required: required}, fmt.Errorf("read memory stats: %w", err)
	}
	return MemoryStatus{Required: required, Available: vm.Available}, nil
}

// EstimateAnalysisBytes approximates the peak memory of analysing a
// width x height image: the decoded pixels, the packed buffer, the edge
// map and the per-row float signals.
func EstimateAnalysisBytes(width, height int) uint64 {
	w, h := uint64(max(width, 0)), uint64(max(height, 0))
	pixels := w * h
	return pixels*4 + pixels*3 + pixels*3 + h*8*8
}
