package server

import "github.com/ironsheep/stego-tools-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required":    []string{"x1", "y1", "x2", "y2"},
		"description": "Optional region (x2/y2 exclusive). Default: whole image",
	}
}

func regionNameProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        imaging.RegionNames,
		"description": "Optional named region instead of explicit coordinates",
	}
}

func keyProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "XOR key 0-255 as decimal (\"26\") or 0x-prefixed hex (\"0x1A\"). Defaults to the server's default key (0x1A unless configured). Use the same key for embed and extract.",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, container format, color mode, and whether it can carry a hidden message (with capacity).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_capacity",
			Description: "Report how many bits and characters can be hidden in an RGB/RGBA image (3 bits per pixel, minus the 3-character terminator).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Hiding and Recovery
		{
			Name:        "stego_embed",
			Description: "Hide a text message in the least-significant bits of an image's R, G and B channels and save the result as a lossless PNG or BMP. Characters must be in the Latin-1 range (U+0000-U+00FF).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"message": map[string]interface{}{
						"type":        "string",
						"description": "Text to hide. Must not be empty, contain \"%%%\", or end with '%'.",
					},
					"key": keyProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the stego image (.png or .bmp). Default: encoded_<name>.png next to the input.",
					},
				},
				"required": []string{"path", "message"},
			},
		},
		{
			Name:        "stego_extract",
			Description: "Recover a message hidden with stego_embed. Fails with 'no valid message found' if the key is wrong or the image carries no message.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"key":  keyProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "stego_sample_pixel",
			Description: "Get the channel values of a pixel, their least-significant bits, and the pixel's position in the embedding bit order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "stego_sample_pixels_multi",
			Description: "Sample channel values and LSBs at multiple pixel coordinates in a single call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label for this point"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Array of points to sample",
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "stego_lsb_plane",
			Description: "Render the least-significant-bit plane of an image as a base64 PNG. Embedded data shows up as noise starting at the top-left.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"channel": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"rgb", "r", "g", "b"},
						"description": "Channel to render. Default rgb (all three)",
						"default":     "rgb",
					},
					"region":      regionProperty(),
					"region_name": regionNameProperty(),
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer magnification (1-16) so individual bits are visible",
						"default":     1,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_lsb_stats",
			Description: "Count set and clear least-significant bits per channel over an image or a region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty(),
					"region":      regionProperty(),
					"region_name": regionNameProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_compare",
			Description: "Measure the distortion between a cover image and a stego image: PSNR, changed channels, max channel delta, and CIE Lab delta E.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cover_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the original image",
					},
					"stego_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image with the hidden message",
					},
				},
				"required": []string{"cover_path", "stego_path"},
			},
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
