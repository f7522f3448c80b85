// Package stego hides text messages in the least-significant bits of an
// image's colour channels and recovers them again.
//
// The package has two independent parts:
//   - The bitstream codec (Encode, TryDecode) turns a message into keyed,
//     terminated bits and back. It performs no I/O.
//   - The Carrier wraps a decoded pixel grid and writes or reads those bits
//     one per channel.
//
// # Bitstream Format
//
// The terminator "%%%" is appended to the message. Every character is XORed
// with a single-byte Key and written as 8 bits, most significant bit first.
// Characters must lie in U+0000..U+00FF so that each one occupies exactly one
// byte; decoding maps bytes back onto the same code points.
//
// # Scan Order
//
// Bits are stored row by row from the top, pixel by pixel from the left, and
// within a pixel in the R, G, B channel order. Alpha is never touched. The
// order is fixed: extraction must visit channels in exactly the order used
// for embedding.
//
// # Extraction
//
// The message length is not stored. Extraction reads channel LSBs in scan
// order and tries to decode after every complete byte, returning as soon as
// the accumulated bytes contain the terminator. The result is always based on
// the shortest terminated prefix of the scan.
//
// # Error Handling
//
// All failures are returned as values and can be matched with errors.Is:
//   - ErrInvalidImageMode: the image has fewer than three colour channels
//   - ErrMessageTooLarge: the bitstream exceeds the carrier capacity
//     (see MessageTooLargeError for the counts)
//   - ErrInvalidImage: the bytes could not be decoded into a pixel grid
//   - ErrNoMessageFound: the whole carrier was scanned without a terminator
//
// Embedding either writes the complete bitstream or writes nothing.
//
// # Thread Safety
//
// Encode and TryDecode are pure. A Carrier is not safe for concurrent use;
// each embed or extract call should build its own Carrier.
package stego
