// Package agent provides data structures and collection routines for the
// sample submitting agent.
package agent

import (
	"fmt"
	"strconv"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Reading is one item value ready to submit to the collector.
type Reading struct {
	// Item is the item name the value belongs to
	Item string

	// Value is the textual value as it goes into the request envelope
	Value string
}

// CollectReadings gathers the system readings the agent reports. The
// corresponding items (float type) must exist under the agent's project.
func CollectReadings() ([]Reading, error) {
	var readings []Reading

	cpuPercents, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("error collecting cpu readings: %w", err)
	}
	if len(cpuPercents) > 0 {
		readings = append(readings, Reading{
			Item:  "cpu_percent",
			Value: strconv.FormatFloat(cpuPercents[0], 'g', -1, 64),
		})
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("error collecting memory readings: %w", err)
	}
	readings = append(readings, Reading{
		Item:  "mem_used_percent",
		Value: strconv.FormatFloat(memStat.UsedPercent, 'g', -1, 64),
	})
	readings = append(readings, Reading{
		Item:  "mem_free",
		Value: strconv.FormatUint(memStat.Free, 10),
	})

	return readings, nil
}
