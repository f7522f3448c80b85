package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}

// callTool runs a tools/call request and returns the text content or the error.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (string, *MCPError) {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return "", resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one item, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	return content[0]["text"].(string), nil
}

// mustCallTool is callTool that fails the test on a tool error and decodes
// the result into v.
func mustCallTool(t *testing.T, s *Server, name string, args map[string]interface{}, v interface{}) {
	t.Helper()

	text, mcpErr := callTool(t, s, name, args)
	if mcpErr != nil {
		t.Fatalf("%s failed: %s (%v)", name, mcpErr.Message, mcpErr.Data)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode %s result: %v", name, err)
	}
}

func errorData(e *MCPError) string {
	if e == nil {
		return ""
	}
	s, _ := e.Data.(string)
	return s
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	mustCallTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if !info.CanCarry || info.Capacity == nil {
		t.Fatal("RGBA png should be able to carry a message")
	}
	if info.Capacity.CapacityBits != 24000 {
		t.Errorf("capacity: got %d, want 24000", info.Capacity.CapacityBits)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()

	_, mcpErr := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	if mcpErr == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if mcpErr.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", mcpErr.Code)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()

	_, mcpErr := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if mcpErr == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if !strings.Contains(errorData(mcpErr), "unknown tool") {
		t.Errorf("error data: got %q", errorData(mcpErr))
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Expected -32602 invalid params, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_MissingPath(t *testing.T) {
	s := New()

	for _, name := range []string{"image_load", "stego_capacity", "stego_embed", "stego_extract"} {
		t.Run(name, func(t *testing.T) {
			_, mcpErr := callTool(t, s, name, map[string]interface{}{"message": "hi"})
			if mcpErr == nil {
				t.Fatal("Expected error for missing path")
			}
			if !strings.Contains(errorData(mcpErr), "path is required") {
				t.Errorf("error data: got %q", errorData(mcpErr))
			}
		})
	}
}

func TestHandleToolsCall_Capacity(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{0, 0, 0, 255})

	var info stego.CapacityInfo
	mustCallTool(t, s, "stego_capacity", map[string]interface{}{"path": imgPath}, &info)

	if info.CapacityBits != 300 {
		t.Errorf("capacity_bits: got %d, want 300", info.CapacityBits)
	}
	if info.CapacityBytes != 37 {
		t.Errorf("capacity_bytes: got %d, want 37", info.CapacityBytes)
	}
	if info.MaxMessageChars != 34 {
		t.Errorf("max_message_chars: got %d, want 34", info.MaxMessageChars)
	}
}

func TestHandleToolsCall_EmbedExtract(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{255, 255, 255, 255})
	outPath := filepath.Join(t.TempDir(), "stego.png")

	var embed EmbedResult
	mustCallTool(t, s, "stego_embed", map[string]interface{}{
		"path":        imgPath,
		"message":     "Test%Message%123",
		"output_path": outPath,
	}, &embed)

	if embed.OutputPath != outPath {
		t.Errorf("output_path: got %s, want %s", embed.OutputPath, outPath)
	}
	if embed.Key != "0x1A" {
		t.Errorf("key: got %s, want 0x1A", embed.Key)
	}
	if embed.BitsWritten != (16+3)*8 {
		t.Errorf("bits_written: got %d, want %d", embed.BitsWritten, (16+3)*8)
	}
	if embed.CapacityBits != 30000 {
		t.Errorf("capacity_bits: got %d, want 30000", embed.CapacityBits)
	}
	if embed.PSNR < 40 {
		t.Errorf("psnr_db: got %.2f, want >= 40", embed.PSNR)
	}

	var extract ExtractResult
	mustCallTool(t, s, "stego_extract", map[string]interface{}{"path": outPath}, &extract)

	if extract.Message != "Test%Message%123" {
		t.Errorf("message: got %q, want %q", extract.Message, "Test%Message%123")
	}
	if extract.MessageChars != 16 {
		t.Errorf("message_chars: got %d, want 16", extract.MessageChars)
	}
}

func TestHandleToolsCall_EmbedDefaultOutputPath(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 32, 32, color.RGBA{10, 20, 30, 255})

	var embed EmbedResult
	mustCallTool(t, s, "stego_embed", map[string]interface{}{
		"path":    imgPath,
		"message": "hello",
	}, &embed)

	want := filepath.Join(filepath.Dir(imgPath), "encoded_"+strings.TrimSuffix(filepath.Base(imgPath), ".png")+".png")
	if embed.OutputPath != want {
		t.Errorf("output_path: got %s, want %s", embed.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("output file not written: %v", err)
	}
}

func TestHandleToolsCall_KeyForms(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 40, 40, color.RGBA{128, 64, 32, 255})
	outPath := filepath.Join(t.TempDir(), "keyed.bmp")

	var embed EmbedResult
	mustCallTool(t, s, "stego_embed", map[string]interface{}{
		"path":        imgPath,
		"message":     "keyed",
		"key":         "0x55",
		"output_path": outPath,
	}, &embed)
	if embed.Key != "0x55" {
		t.Errorf("key: got %s, want 0x55", embed.Key)
	}

	// The same key as a decimal string and as a JSON number.
	for _, key := range []interface{}{"85", 85} {
		var extract ExtractResult
		mustCallTool(t, s, "stego_extract", map[string]interface{}{"path": outPath, "key": key}, &extract)
		if extract.Message != "keyed" {
			t.Errorf("key %v: got %q, want keyed", key, extract.Message)
		}
	}

	// Default key cannot read it.
	_, mcpErr := callTool(t, s, "stego_extract", map[string]interface{}{"path": outPath})
	if mcpErr == nil {
		t.Fatal("extract with the wrong key should fail")
	}
	if !strings.Contains(errorData(mcpErr), "no valid message found") {
		t.Errorf("error data: got %q", errorData(mcpErr))
	}
}

func TestHandleToolsCall_ConfiguredDefaultKey(t *testing.T) {
	s := NewWithConfig(Config{DefaultKey: 0x33})
	imgPath := createTestImageFile(t, 20, 20, color.RGBA{1, 2, 3, 255})
	outPath := filepath.Join(t.TempDir(), "out.png")

	var embed EmbedResult
	mustCallTool(t, s, "stego_embed", map[string]interface{}{
		"path": imgPath, "message": "abc", "output_path": outPath,
	}, &embed)
	if embed.Key != "0x33" {
		t.Errorf("key: got %s, want 0x33", embed.Key)
	}

	var extract ExtractResult
	mustCallTool(t, s, "stego_extract", map[string]interface{}{"path": outPath, "key": "0x33"}, &extract)
	if extract.Message != "abc" {
		t.Errorf("got %q, want abc", extract.Message)
	}
}

func TestHandleToolsCall_EmbedErrors(t *testing.T) {
	s := New()
	small := createTestImageFile(t, 4, 4, color.RGBA{0, 0, 0, 255})
	big := createTestImageFile(t, 40, 40, color.RGBA{0, 0, 0, 255})

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"empty message", map[string]interface{}{"path": big, "message": ""}, "no message provided"},
		{"too large", map[string]interface{}{"path": small, "message": "this will not fit"}, "message too large"},
		{"bad key", map[string]interface{}{"path": big, "message": "x", "key": "0x100"}, "invalid encryption key format"},
		{"bad key text", map[string]interface{}{"path": big, "message": "x", "key": "abc"}, "invalid encryption key format"},
		{"terminator in message", map[string]interface{}{"path": big, "message": "a%%%b"}, "truncated"},
		{"wide characters", map[string]interface{}{"path": big, "message": "snow ☃"}, "one byte"},
		{"lossy output", map[string]interface{}{"path": big, "message": "x", "output_path": filepath.Join(t.TempDir(), "o.jpg")}, "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mcpErr := callTool(t, s, "stego_embed", tt.args)
			if mcpErr == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(errorData(mcpErr), tt.want) {
				t.Errorf("error data: got %q, want it to contain %q", errorData(mcpErr), tt.want)
			}
		})
	}
}

func TestHandleToolsCall_ExtractCleanImage(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 50, 50, color.RGBA{255, 255, 255, 255})

	_, mcpErr := callTool(t, s, "stego_extract", map[string]interface{}{"path": imgPath})
	if mcpErr == nil {
		t.Fatal("extracting from a clean image should fail")
	}
	if !strings.Contains(errorData(mcpErr), "no valid message found") {
		t.Errorf("error data: got %q", errorData(mcpErr))
	}
}

func TestHandleToolsCall_GrayscaleRejected(t *testing.T) {
	s := New()
	gray := image.NewGray(image.Rect(0, 0, 20, 20))
	imgPath := writeTestPNG(t, gray)

	for _, name := range []string{"stego_capacity", "stego_extract"} {
		t.Run(name, func(t *testing.T) {
			_, mcpErr := callTool(t, s, name, map[string]interface{}{"path": imgPath})
			if mcpErr == nil {
				t.Fatal("grayscale image should be rejected")
			}
			if !strings.Contains(errorData(mcpErr), "RGB/RGBA") {
				t.Errorf("error data: got %q", errorData(mcpErr))
			}
		})
	}
}

func TestHandleToolsCall_SamplePixel(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{255, 128, 3, 255})

	var px imaging.PixelResult
	mustCallTool(t, s, "stego_sample_pixel", map[string]interface{}{"path": imgPath, "x": 2, "y": 1}, &px)

	if px.RGBA != (imaging.RGBAColor{R: 255, G: 128, B: 3, A: 255}) {
		t.Errorf("rgba: got %+v", px.RGBA)
	}
	if px.LSBs != [3]uint8{1, 0, 1} {
		t.Errorf("lsbs: got %v, want [1 0 1]", px.LSBs)
	}
	if px.BitOffset != (1*10+2)*3 {
		t.Errorf("bit_offset: got %d, want %d", px.BitOffset, (1*10+2)*3)
	}

	_, mcpErr := callTool(t, s, "stego_sample_pixel", map[string]interface{}{"path": imgPath, "x": 10, "y": 0})
	if mcpErr == nil {
		t.Error("out-of-bounds sample should fail")
	}
}

func TestHandleToolsCall_SamplePixelsMulti(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{7, 7, 7, 255})

	var res imaging.MultiPixelResult
	mustCallTool(t, s, "stego_sample_pixels_multi", map[string]interface{}{
		"path": imgPath,
		"points": []map[string]interface{}{
			{"x": 0, "y": 0, "label": "origin"},
			{"x": 9, "y": 9},
		},
	}, &res)

	if len(res.Samples) != 2 {
		t.Fatalf("samples: got %d, want 2", len(res.Samples))
	}
	if res.Samples[0].Label != "origin" {
		t.Errorf("label: got %q, want origin", res.Samples[0].Label)
	}
	if res.Samples[1].Pixel.BitOffset != 99*3 {
		t.Errorf("bit_offset: got %d, want %d", res.Samples[1].Pixel.BitOffset, 99*3)
	}
}

func TestHandleToolsCall_LSBPlaneAndStats(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 16, 16, color.RGBA{255, 255, 255, 255})

	var plane imaging.LSBPlaneResult
	mustCallTool(t, s, "stego_lsb_plane", map[string]interface{}{"path": imgPath, "channel": "G"}, &plane)
	if plane.Channel != "g" {
		t.Errorf("channel: got %s, want g", plane.Channel)
	}
	if plane.MimeType != "image/png" || plane.ImageBase64 == "" {
		t.Errorf("plane should carry a base64 png, got mime %q", plane.MimeType)
	}

	_, mcpErr := callTool(t, s, "stego_lsb_plane", map[string]interface{}{"path": imgPath, "channel": "alpha"})
	if mcpErr == nil {
		t.Error("alpha channel should be rejected")
	}

	var stats imaging.LSBStatsResult
	mustCallTool(t, s, "stego_lsb_stats", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 4, "y2": 2},
	}, &stats)
	if stats.Pixels != 8 {
		t.Errorf("pixels: got %d, want 8", stats.Pixels)
	}
	if stats.Red.Ones != 8 || stats.Red.Zeros != 0 {
		t.Errorf("red: got %+v, want 8 ones", stats.Red)
	}
	if stats.Balance != 1 {
		t.Errorf("balance: got %v, want 1", stats.Balance)
	}
}

func TestHandleToolsCall_Compare(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 30, 30, color.RGBA{200, 100, 50, 255})
	outPath := filepath.Join(t.TempDir(), "cmp.png")

	var embed EmbedResult
	mustCallTool(t, s, "stego_embed", map[string]interface{}{
		"path": imgPath, "message": "compare me", "output_path": outPath,
	}, &embed)

	var cmp imaging.CompareResult
	mustCallTool(t, s, "stego_compare", map[string]interface{}{
		"cover_path": imgPath, "stego_path": outPath,
	}, &cmp)

	if cmp.Identical {
		t.Error("stego image should differ from cover")
	}
	if cmp.MaxChannelDelta != 1 {
		t.Errorf("max_channel_delta: got %d, want 1", cmp.MaxChannelDelta)
	}
	if cmp.AlphaChanged {
		t.Error("alpha should be untouched")
	}
	if cmp.ChangedChannels > embed.BitsWritten {
		t.Errorf("changed_channels %d exceeds bits written %d", cmp.ChangedChannels, embed.BitsWritten)
	}

	_, mcpErr := callTool(t, s, "stego_compare", map[string]interface{}{"cover_path": imgPath})
	if mcpErr == nil {
		t.Error("missing stego_path should fail")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/tmp/cat.png", "/tmp/encoded_cat.png"},
		{"/tmp/photo.bmp", "/tmp/encoded_photo.png"},
		{"/tmp/a.b.jpg", "/tmp/encoded_a.b.png"},
		{"plain.png", "encoded_plain.png"},
	}

	for _, tt := range tests {
		if got := defaultOutputPath(tt.input); got != tt.want {
			t.Errorf("defaultOutputPath(%q): got %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestKeyArg_Unmarshal(t *testing.T) {
	tests := []struct {
		json    string
		want    keyArg
		wantErr bool
	}{
		{`"0x1A"`, "0x1A", false},
		{`"26"`, "26", false},
		{`26`, "26", false},
		{`""`, "", false},
		{`true`, "", true},
	}

	for _, tt := range tests {
		var k keyArg
		err := json.Unmarshal([]byte(tt.json), &k)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.json)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.json, err)
			continue
		}
		if k != tt.want {
			t.Errorf("%s: got %q, want %q", tt.json, k, tt.want)
		}
	}
}

func TestHandleToolsCall_LSBRegions(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 20, 10, color.RGBA{255, 255, 255, 255})

	var stats imaging.LSBStatsResult
	mustCallTool(t, s, "stego_lsb_stats", map[string]interface{}{
		"path": imgPath, "region_name": "top-half",
	}, &stats)
	if stats.Pixels != 100 {
		t.Errorf("pixels: got %d, want 100", stats.Pixels)
	}

	var plane imaging.LSBPlaneResult
	mustCallTool(t, s, "stego_lsb_plane", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 5, "y2": 2},
		"scale":  3,
	}, &plane)
	if plane.Width != 15 || plane.Height != 6 {
		t.Errorf("dimensions: got %dx%d, want 15x6", plane.Width, plane.Height)
	}

	_, mcpErr := callTool(t, s, "stego_lsb_stats", map[string]interface{}{
		"path":        imgPath,
		"region":      map[string]interface{}{"x1": 0, "y1": 0, "x2": 1, "y2": 1},
		"region_name": "center",
	})
	if mcpErr == nil {
		t.Error("region and region_name together should fail")
	}
}
