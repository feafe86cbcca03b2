package tools

import (
	"context"
	"fmt"

	"mcp-host-info/internal/hostinfo"
	"mcp-host-info/internal/logger"

	"github.com/mark3labs/mcp-go/mcp"
)

// GetHostInfoHandler runs the host query and returns the formatted
// record as the tool result.
func GetHostInfoHandler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Tools.Debug().Msg("Querying host information")

	var info hostinfo.HostInfo
	if err := hostinfo.GetInfo(&info); err != nil {
		logger.Tools.Error().
			Err(err).
			Msg("Failed to query host information")
		return mcp.NewToolResultError(fmt.Sprintf("Error querying host information: %v", err)), nil
	}

	logger.Tools.Debug().
		Uint32("cpu_count", info.CpuCount).
		Uint32("cpu_frequency_mhz", info.CpuFrequency).
		Str("vendor", info.Vendor()).
		Str("brand", info.Brand()).
		Strs("extensions", info.Extensions()).
		Uint32("ram_size_kb", info.RamSize).
		Uint32("ram_free_kb", info.RamFree).
		Uint32("ram_usage_percent", info.RamUsage).
		Msg("Host information retrieved successfully")

	return mcp.NewToolResultText(info.FormatText()), nil
}
