package main

import (
	"fmt"
	"os"

	"mcp-host-info/internal/hostinfo"
)

// Standalone entry: query the host once and print the record. The
// MCP server lives in cmd/mcp.
func main() {
	var info hostinfo.HostInfo
	if err := hostinfo.GetInfo(&info); err != nil {
		fmt.Fprintf(os.Stderr, "hostinfo: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(info.FormatText())
}
