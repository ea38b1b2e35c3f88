package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func propDefault(typ, description string, def interface{}) map[string]interface{} {
	p := prop(typ, description)
	p["default"] = def
	return p
}

func rectProps(what string) map[string]interface{} {
	return map[string]interface{}{
		"x1": prop("integer", "Left edge X coordinate of the "+what),
		"y1": prop("integer", "Top edge Y coordinate of the "+what),
		"x2": prop("integer", "Right edge X coordinate of the "+what+" (exclusive)"),
		"y2": prop("integer", "Bottom edge Y coordinate of the "+what+" (exclusive)"),
	}
}

var noArgs = objectSchema(map[string]interface{}{})

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	legendRect := rectProps("legend in display coordinates")
	legendRect["scale"] = propDefault("number", "Display scale of the image (display = native*scale + offset). Default 1.0", 1.0)
	legendRect["offset_x"] = propDefault("number", "Horizontal display offset in pixels. Default 0", 0)
	legendRect["offset_y"] = propDefault("number", "Vertical display offset in pixels. Default 0", 0)
	legendRect["view_width"] = prop("integer", "Viewport width; with view_height and no scale, the blueprint is fitted and centered in the viewport")
	legendRect["view_height"] = prop("integer", "Viewport height")

	crop := rectProps("region")
	crop["path"] = prop("string", "Absolute path to the image file")
	crop["scale"] = propDefault("number", "Optional scale factor (e.g., 2.0 to double size). Default 1.0", 1.0)

	return []Tool{
		// Blueprint
		{
			Name:        "image_load",
			Description: "Open a blueprint image and start a new annotation session on it. Returns dimensions and format.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use this to zoom into areas that need detailed examination.",
			InputSchema: objectSchema(crop, "path", "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "pdf_convert",
			Description: "Extract the largest image on the first page of a PDF drawing and save it as <output_dir>/<name>/<name>_page1.png.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":       prop("string", "Absolute path to the PDF file"),
				"output_dir": prop("string", "Directory to write into (defaults to the configured PDF output directory)"),
			}, "path"),
		},

		// Legend
		{
			Name:        "legend_confirm",
			Description: "Select the legend region. Coordinates are in display space and mapped back to blueprint pixels with the given scale and offset. The crop and its box are saved under legend_symbols/.",
			InputSchema: objectSchema(legendRect, "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "legend_load",
			Description: "Restore the legend from legend_symbols/legend_bbox.json for the open blueprint.",
			InputSchema: noArgs,
		},
		{
			Name:        "legend_read_text",
			Description: "Recognize all text in the legend. Fragments are ordered in reading order and given in legend pixels.",
			InputSchema: noArgs,
		},
		{
			Name:        "legend_preview",
			Description: "Render the legend with detected symbols (yellow), linked symbols and their label regions (green) outlined. Returns a base64 PNG.",
			InputSchema: noArgs,
		},

		// Symbols and links
		{
			Name:        "symbols_detect",
			Description: "Detect candidate symbol regions in the legend. Boxes are in legend pixels, ids start at 1.",
			InputSchema: noArgs,
		},
		{
			Name:        "symbol_select",
			Description: "Find the symbol nearest a click in legend pixels and make it the pending symbol. Returns null when no symbol is found within the click radius.",
			InputSchema: objectSchema(map[string]interface{}{
				"x": prop("integer", "Click X coordinate in legend pixels"),
				"y": prop("integer", "Click Y coordinate in legend pixels"),
			}, "x", "y"),
		},
		{
			Name:        "symbol_select_rect",
			Description: "Make a hand-drawn rectangle in legend pixels the pending symbol.",
			InputSchema: objectSchema(rectProps("symbol in legend pixels"), "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "label_select",
			Description: "Read the label inside a rectangle in legend pixels and link it to the pending symbol. Returns null when nothing is pending or no text was recognized.",
			InputSchema: objectSchema(rectProps("label in legend pixels"), "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "link_undo",
			Description: "Cancel the pending symbol, or remove the most recent link when nothing is pending.",
			InputSchema: noArgs,
		},
		{
			Name:        "links_clear",
			Description: "Remove every link and cancel the pending symbol.",
			InputSchema: noArgs,
		},
		{
			Name:        "links_list",
			Description: "List the links in the order they were made.",
			InputSchema: noArgs,
		},

		// Session
		{
			Name:        "session_save",
			Description: "Write the session file and symbol_links/links.json.",
			InputSchema: noArgs,
		},
		{
			Name:        "session_load",
			Description: "Replace the current session with a saved one. On failure the session is reset to empty.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Session file to load (defaults to the configured session file)"),
			}),
		},
		{
			Name:        "session_summary",
			Description: "Count what the session holds.",
			InputSchema: noArgs,
		},

		// Export
		{
			Name:        "icons_export",
			Description: "Write each linked symbol as <label>.png, with spaces replaced by _ and slashes by -.",
			InputSchema: noArgs,
		},
		{
			Name:        "tasks_generate",
			Description: "Create one work item per link and store them in the session.",
			InputSchema: noArgs,
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
