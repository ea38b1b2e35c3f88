// Package server implements the MCP (Model Context Protocol) server that
// exposes the legend linking workflow as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logging goes to stderr so it never mixes with protocol output.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Blueprint:
//   - image_load: Open a blueprint and start a new session
//   - image_crop: Extract a rectangular region as PNG
//   - pdf_convert: Rasterize the first page of a PDF drawing
//
// Legend:
//   - legend_confirm: Select the legend from display coordinates
//   - legend_load: Restore the legend from its saved box
//   - legend_read_text: Recognize all legend text
//   - legend_preview: Render detected and linked boxes over the legend
//
// Symbols and links:
//   - symbols_detect, symbol_select, symbol_select_rect
//   - label_select, link_undo, links_clear, links_list
//
// Session and export:
//   - session_save, session_load, session_summary
//   - icons_export, tasks_generate
//
// Symbol, label and legend-text coordinates are legend pixels; only
// legend_confirm takes display coordinates.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (bad arguments or
//     unknown tool), -32601 (unknown method), -32700 (unparseable line)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Metrics
//
// Request and tool counters, tool latency and session gauges are kept in a
// private Prometheus registry. Metrics.WriteToTextfile dumps them in the
// text exposition format.
//
// # Usage
//
//	srv := server.New(controller, server.Options{Version: version})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
