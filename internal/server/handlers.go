package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/imaging"
	"github.com/ironsheep/legend-linker/internal/linking"
	"github.com/ironsheep/legend-linker/internal/ocr"
	"github.com/ironsheep/legend-linker/internal/pdf"
	"github.com/ironsheep/legend-linker/internal/workflow"
)

// errInvalidParams marks argument errors, reported with code -32602.
var errInvalidParams = errors.New("invalid params")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "label_select").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000;
// malformed arguments and unknown tools use -32602.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	s.metrics.observeTool(params.Name, start, err)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidParams) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool executed", "tool", params.Name, "duration", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Blueprint
	case "image_load":
		return s.handleImageLoad(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "pdf_convert":
		return s.handlePDFConvert(args)

	// Legend
	case "legend_confirm":
		return s.handleLegendConfirm(args)
	case "legend_load":
		return s.handleLegendLoad()
	case "legend_read_text":
		return s.handleLegendReadText()
	case "legend_preview":
		return s.handleLegendPreview()

	// Symbols and links
	case "symbols_detect":
		return s.handleSymbolsDetect()
	case "symbol_select":
		return s.handleSymbolSelect(args)
	case "symbol_select_rect":
		return s.handleSymbolSelectRect(args)
	case "label_select":
		return s.handleLabelSelect(args)
	case "link_undo":
		return s.handleLinkUndo()
	case "links_clear":
		return s.handleLinksClear()
	case "links_list":
		return s.handleLinksList()

	// Session
	case "session_save":
		return s.handleSessionSave()
	case "session_load":
		return s.handleSessionLoad(args)
	case "session_summary":
		return s.ctrl.Summary(), nil

	// Export
	case "icons_export":
		return s.handleIconsExport()
	case "tasks_generate":
		return s.handleTasksGenerate()

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidParams, name)
	}
}

// decodeArgs unmarshals tool arguments. Missing arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type rectArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (a rectArgs) rect() image.Rectangle {
	return image.Rect(a.X1, a.Y1, a.X2, a.Y2)
}

// === Blueprint Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidParams)
	}
	info, err := s.ctrl.OpenImage(a.Path)
	if err != nil {
		return nil, err
	}
	s.metrics.links.Set(0)
	s.metrics.symbols.Set(0)
	return info, nil
}

type imageCropArgs struct {
	Path string `json:"path"`
	rectArgs
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.ctrl.Cache().Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

type pdfConvertArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

type pdfConvertResult struct {
	ImagePath string `json:"image_path"`
}

func (s *Server) handlePDFConvert(args json.RawMessage) (interface{}, error) {
	var a pdfConvertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		a.OutputDir = s.opts.PDFOutputDir
	}
	out, err := pdf.FirstPageImage(a.Path, a.OutputDir)
	if err != nil {
		return nil, err
	}
	return pdfConvertResult{ImagePath: out}, nil
}

// === Legend Handlers ===

type legendConfirmArgs struct {
	rectArgs
	Scale      float64 `json:"scale"`
	OffsetX    float64 `json:"offset_x"`
	OffsetY    float64 `json:"offset_y"`
	ViewWidth  int     `json:"view_width"`
	ViewHeight int     `json:"view_height"`
}

type legendResult struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	// Display is the snapped legend mapped back into the caller's view.
	Display *geometry.BoundingBox `json:"display,omitempty"`
}

func newLegendResult(r image.Rectangle) legendResult {
	return legendResult{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

func (s *Server) handleLegendConfirm(args json.RawMessage) (interface{}, error) {
	var a legendConfirmArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	t, err := s.legendTransform(a)
	if err != nil {
		return nil, err
	}
	display := geometry.FromCorners(float64(a.X1), float64(a.Y1), float64(a.X2), float64(a.Y2), geometry.SpaceDisplay)
	r, err := s.ctrl.ConfirmLegend(display, t)
	if err != nil {
		return nil, err
	}
	res := newLegendResult(r)
	shown := t.ToDisplay(geometry.FromRect(r, geometry.SpaceNative))
	res.Display = &shown
	return res, nil
}

// legendTransform builds the display transform for legend_confirm. A view
// size without an explicit scale fits the blueprint into that view.
func (s *Server) legendTransform(a legendConfirmArgs) (geometry.Transform, error) {
	if a.Scale == 0 && (a.ViewWidth != 0 || a.ViewHeight != 0) {
		t, err := s.ctrl.FitTransform(a.ViewWidth, a.ViewHeight)
		if errors.Is(err, workflow.ErrNoImage) {
			return t, err
		}
		if err != nil {
			return t, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
		return t, nil
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	t, err := geometry.NewTransform(a.Scale, a.OffsetX, a.OffsetY)
	if err != nil {
		return t, fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return t, nil
}

func (s *Server) handleLegendLoad() (interface{}, error) {
	r, err := s.ctrl.LoadLegend()
	if err != nil {
		return nil, err
	}
	return newLegendResult(r), nil
}

type textResult struct {
	Fragments []ocr.TextFragment `json:"fragments"`
	Count     int                `json:"count"`
}

func (s *Server) handleLegendReadText() (interface{}, error) {
	frags, err := s.ctrl.ReadLegendText()
	if err != nil {
		return nil, err
	}
	if frags == nil {
		frags = []ocr.TextFragment{}
	}
	return textResult{Fragments: frags, Count: len(frags)}, nil
}

type previewResult struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleLegendPreview() (interface{}, error) {
	encoded, err := s.ctrl.Preview()
	if err != nil {
		return nil, err
	}
	return previewResult{ImageBase64: encoded, MimeType: "image/png"}, nil
}

// === Symbol and Link Handlers ===

type symbolsResult struct {
	Symbols []detection.SymbolCandidate `json:"symbols"`
	Count   int                         `json:"count"`
}

func (s *Server) handleSymbolsDetect() (interface{}, error) {
	symbols, err := s.ctrl.DetectSymbols()
	if err != nil {
		return nil, err
	}
	if symbols == nil {
		symbols = []detection.SymbolCandidate{}
	}
	s.metrics.symbols.Set(float64(len(symbols)))
	return symbolsResult{Symbols: symbols, Count: len(symbols)}, nil
}

type symbolSelectArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleSymbolSelect(args json.RawMessage) (interface{}, error) {
	var a symbolSelectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.ctrl.SelectSymbol(a.X, a.Y)
}

func (s *Server) handleSymbolSelectRect(args json.RawMessage) (interface{}, error) {
	var a rectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.ctrl.SelectSymbolRect(a.rect())
}

func (s *Server) handleLabelSelect(args json.RawMessage) (interface{}, error) {
	var a rectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	link, err := s.ctrl.SelectLabel(a.rect())
	if err != nil {
		return nil, err
	}
	s.metrics.links.Set(float64(len(s.ctrl.Links())))
	return link, nil
}

type undoResult struct {
	Changed bool `json:"changed"`
	Links   int  `json:"links"`
}

func (s *Server) handleLinkUndo() (interface{}, error) {
	changed := s.ctrl.Undo()
	n := len(s.ctrl.Links())
	s.metrics.links.Set(float64(n))
	return undoResult{Changed: changed, Links: n}, nil
}

func (s *Server) handleLinksClear() (interface{}, error) {
	s.ctrl.ClearAll()
	s.metrics.links.Set(0)
	return undoResult{Changed: true, Links: 0}, nil
}

type linksResult struct {
	Links   []linking.Link             `json:"links"`
	Pending *detection.SymbolCandidate `json:"pending"`
}

func (s *Server) handleLinksList() (interface{}, error) {
	res := linksResult{Links: s.ctrl.Links()}
	if res.Links == nil {
		res.Links = []linking.Link{}
	}
	if p, ok := s.ctrl.Pending(); ok {
		res.Pending = &p
	}
	return res, nil
}

// === Session Handlers ===

type savedResult struct {
	Path  string `json:"path"`
	Links int    `json:"links"`
}

func (s *Server) handleSessionSave() (interface{}, error) {
	if err := s.ctrl.Save(); err != nil {
		return nil, err
	}
	return savedResult{Path: s.ctrl.SessionPath(), Links: len(s.ctrl.Links())}, nil
}

type sessionLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSessionLoad(args json.RawMessage) (interface{}, error) {
	var a sessionLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	err := s.ctrl.LoadSession(a.Path)
	s.metrics.links.Set(float64(len(s.ctrl.Links())))
	s.metrics.symbols.Set(float64(len(s.ctrl.Symbols())))
	if err != nil {
		return nil, err
	}
	return s.ctrl.Summary(), nil
}

// === Export Handlers ===

type exportResult struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
}

func (s *Server) handleIconsExport() (interface{}, error) {
	paths, err := s.ctrl.ExportIcons()
	if err != nil {
		return nil, err
	}
	return exportResult{Paths: paths, Count: len(paths)}, nil
}

type tasksResult struct {
	Tasks []string `json:"tasks"`
	Count int      `json:"count"`
}

func (s *Server) handleTasksGenerate() (interface{}, error) {
	tasks := s.ctrl.GenerateTasks()
	return tasksResult{Tasks: tasks, Count: len(tasks)}, nil
}
