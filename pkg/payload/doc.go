// Package payload implements the fixed-size binary frame exchanged
// between the bus master and the peripheral.
package payload

// Every message on the bus, command or response, is one frame of
// PacketSize bytes: a sync header, a two-letter verb code, four
// float32 fields and a trailing CRC-8. The fixed size lets both sides
// transfer a whole message in a single bus transaction against a
// memory-mapped window.
//
// Decoding distinguishes a bad sync header from other corruption.
// A bad header is usually bus-scanning traffic (e.g. i2cdetect) and
// is treated as benign by upper layers; anything else is a real error.
