// Package server implements the MCP (Model Context Protocol) server for the
// steganography tools.
//
// This package provides a JSON-RPC 2.0 server that exposes message hiding,
// message recovery and LSB inspection through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and report format, mode and capacity
//   - stego_capacity: Capacity in bits, bytes and characters
//
// Hiding and Recovery:
//   - stego_embed: Hide a message and write a lossless stego image
//   - stego_extract: Recover a hidden message
//
// Inspection:
//   - stego_sample_pixel: Channel values and LSBs at a pixel
//   - stego_sample_pixels_multi: Sample multiple points
//   - stego_lsb_plane: Render the LSB plane
//   - stego_lsb_stats: Count set LSBs per channel
//   - stego_compare: PSNR and delta E between cover and stego image
//
// # Keys
//
// Keys are passed as strings in decimal or 0x-prefixed hex. When omitted,
// both stego_embed and stego_extract use Config.DefaultKey, so an embed and
// extract pair without explicit keys always agrees.
//
// # Image Caching
//
// Loaded images are cached by path. stego_embed evicts its output path after
// writing, so a following stego_extract sees the new file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, e.g. "message too large (160 bits > 96 available)"
package server
