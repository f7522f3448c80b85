package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "stego_embed", "stego_extract").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/stego function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "stego_capacity":
		return s.handleStegoCapacity(args)

	// Hiding and Recovery
	case "stego_embed":
		return s.handleStegoEmbed(args)
	case "stego_extract":
		return s.handleStegoExtract(args)

	// Inspection
	case "stego_sample_pixel":
		return s.handleStegoSamplePixel(args)
	case "stego_sample_pixels_multi":
		return s.handleStegoSamplePixelsMulti(args)
	case "stego_lsb_plane":
		return s.handleStegoLSBPlane(args)
	case "stego_lsb_stats":
		return s.handleStegoLSBStats(args)
	case "stego_compare":
		return s.handleStegoCompare(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// keyArg accepts a key as a JSON string ("0x1A", "26") or number (26).
type keyArg string

func (k *keyArg) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = keyArg(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("key must be a string or integer: %w", err)
	}
	*k = keyArg(n.String())
	return nil
}

// resolveKey parses a key argument, falling back to the configured default.
func (s *Server) resolveKey(k keyArg) (stego.Key, error) {
	if strings.TrimSpace(string(k)) == "" {
		return s.cfg.DefaultKey, nil
	}
	return stego.ParseKey(string(k))
}

func requirePath(path, field string) error {
	if path == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path, "path"); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleStegoCapacity(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path, "path"); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return stego.Capacity(img)
}

// === Hiding and Recovery Handlers ===

type stegoEmbedArgs struct {
	Path       string `json:"path"`
	Message    string `json:"message"`
	Key        keyArg `json:"key"`
	OutputPath string `json:"output_path"`
}

// EmbedResult describes a completed stego_embed call.
type EmbedResult struct {
	OutputPath   string  `json:"output_path"`
	Key          string  `json:"key"`
	MessageChars int     `json:"message_chars"`
	BitsWritten  int     `json:"bits_written"`
	CapacityBits int     `json:"capacity_bits"`
	PSNR         float64 `json:"psnr_db,omitempty"`
}

// defaultOutputPath returns <dir>/encoded_<name>.png for an input path.
func defaultOutputPath(input string) string {
	dir, base := filepath.Split(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "encoded_"+name+".png")
}

func (s *Server) handleStegoEmbed(args json.RawMessage) (interface{}, error) {
	var a stegoEmbedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path, "path"); err != nil {
		return nil, err
	}
	if a.Message == "" {
		return nil, stego.ErrEmptyMessage
	}
	key, err := s.resolveKey(a.Key)
	if err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		a.OutputPath = defaultOutputPath(a.Path)
	}

	cover, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	stegoImg, err := stego.EmbedMessage(cover, a.Message, key)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(a.OutputPath, stegoImg); err != nil {
		return nil, err
	}
	s.cache.Evict(a.OutputPath)

	result := &EmbedResult{
		OutputPath:   a.OutputPath,
		Key:          key.String(),
		MessageChars: len([]rune(a.Message)),
		BitsWritten:  stego.EncodedBits(a.Message),
		CapacityBits: stegoImg.Bounds().Dx() * stegoImg.Bounds().Dy() * 3,
	}
	if cmp, err := imaging.Compare(cover, stegoImg); err == nil {
		result.PSNR = cmp.PSNR
	}

	if s.cfg.Debug {
		log.Printf("embedded %d bits into %s -> %s", result.BitsWritten, a.Path, a.OutputPath)
	}
	return result, nil
}

type stegoExtractArgs struct {
	Path string `json:"path"`
	Key  keyArg `json:"key"`
}

// ExtractResult describes a completed stego_extract call.
type ExtractResult struct {
	Message      string `json:"message"`
	MessageChars int    `json:"message_chars"`
	Key          string `json:"key"`
}

func (s *Server) handleStegoExtract(args json.RawMessage) (interface{}, error) {
	var a stegoExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path, "path"); err != nil {
		return nil, err
	}
	key, err := s.resolveKey(a.Key)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	msg, err := stego.ExtractMessage(img, key)
	if err != nil {
		if errors.Is(err, stego.ErrNoMessageFound) {
			return nil, fmt.Errorf("%w (key %s)", err, key)
		}
		return nil, err
	}
	return &ExtractResult{
		Message:      msg,
		MessageChars: len([]rune(msg)),
		Key:          key.String(),
	}, nil
}

// === Inspection Handlers ===

type stegoSamplePixelArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleStegoSamplePixel(args json.RawMessage) (interface{}, error) {
	var a stegoSamplePixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SamplePixel(img, a.X, a.Y)
}

type stegoSamplePixelsMultiArgs struct {
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label"`
	} `json:"points"`
}

func (s *Server) handleStegoSamplePixelsMulti(args json.RawMessage) (interface{}, error) {
	var a stegoSamplePixelsMultiArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SamplePixelsMulti(img, points)
}

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// resolveRegion picks an explicit region or a named one. Neither means the
// whole image.
func resolveRegion(img image.Image, region *regionArgs, name string) (*imaging.Region, error) {
	if region != nil && name != "" {
		return nil, fmt.Errorf("region and region_name are mutually exclusive")
	}
	if name != "" {
		return imaging.NamedRegion(img, name)
	}
	if region != nil {
		return &imaging.Region{X1: region.X1, Y1: region.Y1, X2: region.X2, Y2: region.Y2}, nil
	}
	return nil, nil
}

type stegoLSBPlaneArgs struct {
	Path       string      `json:"path"`
	Channel    string      `json:"channel"`
	Region     *regionArgs `json:"region"`
	RegionName string      `json:"region_name"`
	Scale      int         `json:"scale"`
}

func (s *Server) handleStegoLSBPlane(args json.RawMessage) (interface{}, error) {
	var a stegoLSBPlaneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := resolveRegion(img, a.Region, a.RegionName)
	if err != nil {
		return nil, err
	}
	return imaging.LSBPlaneRegion(img, strings.ToLower(a.Channel), region, a.Scale)
}

type stegoLSBStatsArgs struct {
	Path       string      `json:"path"`
	Region     *regionArgs `json:"region"`
	RegionName string      `json:"region_name"`
}

func (s *Server) handleStegoLSBStats(args json.RawMessage) (interface{}, error) {
	var a stegoLSBStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := resolveRegion(img, a.Region, a.RegionName)
	if err != nil {
		return nil, err
	}
	return imaging.LSBStats(img, region)
}

type stegoCompareArgs struct {
	CoverPath string `json:"cover_path"`
	StegoPath string `json:"stego_path"`
}

func (s *Server) handleStegoCompare(args json.RawMessage) (interface{}, error) {
	var a stegoCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.CoverPath, "cover_path"); err != nil {
		return nil, err
	}
	if err := requirePath(a.StegoPath, "stego_path"); err != nil {
		return nil, err
	}

	cover, err := s.cache.Load(a.CoverPath)
	if err != nil {
		return nil, err
	}
	stegoImg, err := s.cache.Load(a.StegoPath)
	if err != nil {
		return nil, err
	}
	return imaging.Compare(cover, stegoImg)
}
