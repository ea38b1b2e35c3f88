package server

import (
	"testing"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_crop",
		"pdf_convert",
		"legend_confirm",
		"legend_load",
		"legend_read_text",
		"legend_preview",
		"symbols_detect",
		"symbol_select",
		"symbol_select_rect",
		"label_select",
		"link_undo",
		"links_clear",
		"links_list",
		"session_save",
		"session_load",
		"session_summary",
		"icons_export",
		"tasks_generate",
	}

	m := toolMap()
	if len(m) != len(tools) {
		t.Errorf("tool names are not unique: %d names for %d tools", len(m), len(tools))
	}
	for _, name := range expectedTools {
		if _, ok := m[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required field must be declared.
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required field %q has no property", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_RectTools(t *testing.T) {
	m := toolMap()
	for _, name := range []string{"image_crop", "legend_confirm", "symbol_select_rect", "label_select"} {
		t.Run(name, func(t *testing.T) {
			required, ok := m[name].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("required should be a string slice")
			}
			want := map[string]bool{"x1": true, "y1": true, "x2": true, "y2": true}
			for _, r := range required {
				delete(want, r)
			}
			for missing := range want {
				t.Errorf("%s should require '%s'", name, missing)
			}
		})
	}
}

func TestToolDefinitions_LegendConfirmDefaults(t *testing.T) {
	props := toolMap()["legend_confirm"].InputSchema["properties"].(map[string]interface{})
	scale, ok := props["scale"].(map[string]interface{})
	if !ok {
		t.Fatal("legend_confirm should declare scale")
	}
	if scale["default"] != 1.0 {
		t.Errorf("scale default: got %v, want 1.0", scale["default"])
	}
}
