package system

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats - снимок нагрузки на систему и на процесс
type Stats struct {
	CPUs          int
	CPUPercent    float64 // вся система, за интервал замера
	MemTotal      uint64
	MemUsedPct    float64
	ProcessRSS    uint64
	ProcessCPUPct float64
	Goroutines    int
}

// Collect замеряет нагрузку. CPU считается за interval;
// если отдельный замер не удался, его поля остаются нулевыми.
func Collect(ctx context.Context, interval time.Duration) (Stats, error) {
	s := Stats{CPUs: runtime.NumCPU(), Goroutines: runtime.NumGoroutine()}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, fmt.Errorf("memory stats: %w", err)
	}
	s.MemTotal = vm.Total
	s.MemUsedPct = vm.UsedPercent

	if pct, err := cpu.PercentWithContext(ctx, interval, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}

	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
			s.ProcessRSS = mi.RSS
		}
		if pct, err := p.CPUPercentWithContext(ctx); err == nil {
			s.ProcessCPUPct = pct
		}
	}
	return s, nil
}

// Report форматирует отчет для -stats
func (s Stats) Report(title string, rows ...string) string {
	out := fmt.Sprintf("--- [%s] ---\n", title)
	for _, r := range rows {
		out += r + "\n"
	}
	out += fmt.Sprintf(
		"CPU: %d cores, host %.1f%%, process %.1f%%\n"+
			"Memory: %.1f%% of %s, process RSS %s\n"+
			"Goroutines: %d\n"+
			"----------------------------\n",
		s.CPUs, s.CPUPercent, s.ProcessCPUPct,
		s.MemUsedPct, Bytes(s.MemTotal), Bytes(s.ProcessRSS),
		s.Goroutines,
	)
	return out
}

// Bytes печатает размер в двоичных единицах
func Bytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
