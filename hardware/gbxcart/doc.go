// Package gbxcart implements the command protocol of the GBxCart RW
// cartridge reader.
//
// Commands are single bytes, optionally followed by a number or a payload.
// Numbers are sent as lowercase hexadecimal (decimal in the case of the bank
// value of a SetBank() call) and are terminated with a NUL byte.
//
// Reads from the cartridge are streamed by the reader in fixed size chunks.
// After each chunk the client asks for the next chunk with the Continue
// command or ends the stream with the Stop command. The reader acknowledges
// every write with the Ack byte.
//
// The reader needs time to act on commands and so every command is followed
// by a short settling delay. The delays are part of the protocol and cannot
// be removed. For testing purposes, the Delay field of the Client type can be
// replaced.
//
// The firmware sub-package contains a simulation of the reader firmware and
// of the cartridges that can be inserted into it.
package gbxcart
