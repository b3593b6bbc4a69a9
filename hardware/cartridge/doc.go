// Package cartridge describes the cartridges that can be inserted into the
// GBxCart RW reader.
//
// The functions in this package are pure. They interpret the header data
// read from a cartridge and produce a Profile. The probing of the cartridge
// hardware, for things that cannot be decided from the header alone, is
// handled by the detect sub-package.
//
// GB cartridge headers contain the size of the ROM and RAM, the type of the
// memory bank controller and a checksum. GBA cartridge headers contain none
// of that information and so a GBA Profile is largely built by probing.
package cartridge
