// Package serial opens the serial link to the cartridge reader.
//
// Standard baud rates are opened with the "github.com/pkg/term" package. The
// reader also supports a non-standard rate of 1.7Mbaud which termios cannot
// express, links at that rate are opened with "github.com/jacobsa/go-serial".
//
// Reads from a Link never block. A Read() that returns zero bytes and no error
// means that no data is available yet and the caller should poll again.
//
// The Discover() function finds a responding reader by trying the configured
// port at both supported baud rates before scanning every port number.
package serial
