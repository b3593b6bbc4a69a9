// Package hardware is the base package for talking to a GBxCart RW cartridge
// reader. The sub-packages are layered: serial opens the link to the reader,
// gbxcart implements the command protocol over the link, cartridge and its
// sub-packages describe and detect the inserted cartridge, and transfer moves
// ROM and save data between the host and the cartridge.
package hardware
