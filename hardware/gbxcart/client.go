// This file is part of gbxfs.
//
// gbxfs is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gbxfs is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gbxfs.  If not, see <https://www.gnu.org/licenses/>.

package gbxcart

import (
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/serial"
	"github.com/jetsetilly/gbxfs/logger"
)

// Sentinel error patterns.
const (
	DeviceUnresponsive = "gbxcart: device unresponsive"
	LinkError          = "gbxcart: %v"
)

// Settling delays required by the reader after each type of command.
const (
	ModeDelay    = time.Millisecond
	NumberDelay  = 6 * time.Millisecond
	BankDelay    = 5 * time.Millisecond
	ResyncDelay  = 500 * time.Millisecond
	FlashIDDelay = 100 * time.Millisecond
)

// DefaultPollBudget is the number of empty polls of the link allowed by
// ReadBlock() before it gives up and returns a short read.
const DefaultPollBudget = 20000

// DefaultAckTimeout is the maximum time WaitForAck() will wait.
const DefaultAckTimeout = 5 * time.Second

// RequestValue() polls the link at most valuePolls times with a delay of
// valuePollDelay between each poll.
const (
	valuePolls     = 25
	valuePollDelay = 10 * time.Millisecond
)

// the FastReadCheck() must receive all data in this number of polls, with a
// delay of one millisecond between each poll
const fastReadCheckPolls = 750

// Client is the host side of the reader protocol. It is not safe for
// concurrent use.
type Client struct {
	link serial.Link

	// number of empty polls allowed by ReadBlock()
	PollBudget int

	// delay between empty polls in ReadBlock(). a non-zero value is useful
	// for platforms where polling returns sooner than the reader can fill
	// the input
	PollDelay time.Duration

	// maximum time to wait for an Ack byte. a value of zero means there is no
	// limit
	AckTimeout time.Duration

	// all settling delays are made with the Delay function. the default is
	// time.Sleep()
	Delay func(time.Duration)

	// values retrieved from the reader by Connect()
	CartMode byte
	PCB      byte
	Firmware byte
	FastRead bool
}

// NewClient is the preferred method of initialisation for the Client type.
func NewClient(link serial.Link) *Client {
	return &Client{
		link:       link,
		PollBudget: DefaultPollBudget,
		AckTimeout: DefaultAckTimeout,
		Delay:      time.Sleep,
	}
}

func (c *Client) delay(d time.Duration) {
	if c.Delay != nil {
		c.Delay(d)
	}
}

// Settle waits for the specified duration using the Delay function.
func (c *Client) Settle(d time.Duration) {
	c.delay(d)
}

func (c *Client) write(b []byte) error {
	_, err := c.link.Write(b)
	if err != nil {
		return curated.Errorf(LinkError, err)
	}
	return nil
}

// Poll reads whatever data is waiting on the link, up to max bytes. The
// returned slice may be empty.
func (c *Client) Poll(max int) ([]byte, error) {
	b := make([]byte, max)
	n, err := c.link.Read(b)
	if err != nil && err != io.EOF {
		return nil, curated.Errorf(LinkError, err)
	}
	return b[:n], nil
}

// SendMode sends a single command byte.
func (c *Client) SendMode(cmd byte) error {
	err := c.write([]byte{cmd})
	c.delay(ModeDelay)
	return err
}

// SendNumber sends a command byte followed by the number as lowercase
// hexadecimal and a terminating NUL.
func (c *Client) SendNumber(cmd byte, n uint32) error {
	err := c.write(fmt.Appendf(nil, "%c%x\x00", cmd, n))
	c.delay(NumberDelay)
	return err
}

// ReadBlock reads n bytes from the link. The read is made in chunks no larger
// than ChunkSize. If the data does not arrive within the poll budget then the
// bytes received so far are returned. A short read is not an error.
func (c *Client) ReadBlock(n int) ([]byte, error) {
	b := make([]byte, n)
	got := 0
	empty := 0

	for got < n {
		end := min(got+ChunkSize, n)
		m, err := c.link.Read(b[got:end])
		if err != nil && err != io.EOF {
			return b[:got], curated.Errorf(LinkError, err)
		}

		if m > 0 {
			got += m
			continue
		}

		empty++
		if empty >= c.PollBudget {
			break
		}
		if c.PollDelay > 0 {
			c.delay(c.PollDelay)
		}
	}

	return b[:got], nil
}

// WaitForAck waits for the Ack byte. Any other byte is discarded. If the
// AckTimeout field is not zero and the Ack does not arrive in time the
// DeviceUnresponsive error is returned.
func (c *Client) WaitForAck() error {
	var deadline time.Time
	if c.AckTimeout > 0 {
		deadline = time.Now().Add(c.AckTimeout)
	}

	b := make([]byte, 1)
	for {
		n, err := c.link.Read(b)
		if err != nil && err != io.EOF {
			return curated.Errorf(LinkError, err)
		}
		if n > 0 && b[0] == Ack {
			return nil
		}
		if n == 0 && !deadline.IsZero() && time.Now().After(deadline) {
			return curated.Errorf(DeviceUnresponsive)
		}
	}
}

// ContinueRead asks for the next chunk of a streamed read.
func (c *Client) ContinueRead() error {
	return c.write([]byte{Continue})
}

// StopRead ends a streamed read.
func (c *Client) StopRead() error {
	return c.write([]byte{Stop})
}

// RequestValue sends the command and returns the single byte reply. A value of
// zero is returned if the reader does not reply in time.
func (c *Client) RequestValue(cmd byte) (byte, error) {
	err := c.SendMode(cmd)
	if err != nil {
		return 0, err
	}

	b := make([]byte, 1)
	for range valuePolls {
		n, err := c.link.Read(b)
		if err != nil && err != io.EOF {
			return 0, curated.Errorf(LinkError, err)
		}
		if n > 0 {
			return b[0], nil
		}
		c.delay(valuePollDelay)
	}

	return 0, nil
}

// SetBank writes a value to a mapper register of a GB cartridge. The address
// is sent as hexadecimal but the value is sent as decimal.
func (c *Client) SetBank(addr uint16, bank uint8) error {
	err := c.write(fmt.Appendf(nil, "%c%x\x00", SetBank, addr))
	if err != nil {
		return err
	}
	c.delay(BankDelay)

	err = c.write(fmt.Appendf(nil, "%c%d\x00", SetBank, bank))
	if err != nil {
		return err
	}
	c.delay(BankDelay)

	return nil
}

// WriteBlock sends the command byte and the data in a single write. It does
// not wait for the Ack.
func (c *Client) WriteBlock(cmd byte, data []byte) error {
	b := make([]byte, 0, len(data)+1)
	b = append(b, cmd)
	b = append(b, data...)
	return c.write(b)
}

// FlashWriteAddressByte writes a byte to an address in the flash cart address
// space of a GBA cartridge. The address is a byte address and is halved
// before sending.
func (c *Client) FlashWriteAddressByte(addr uint32, v uint16) error {
	err := c.write(fmt.Appendf(nil, "%c%x\x00", GBAFlashCart, addr/2))
	if err != nil {
		return err
	}
	err = c.write(fmt.Appendf(nil, "%c%x\x00", GBAFlashCart, v))
	if err != nil {
		return err
	}
	return c.WaitForAck()
}

// FlushInput discards any pending input.
func (c *Client) FlushInput() error {
	err := c.link.Flush()
	if err != nil {
		return curated.Errorf(LinkError, err)
	}
	return nil
}

// Resync recovers from a short read. The current stream is stopped and any
// pending input is discarded before the stream is restarted at addr with the
// specified mode.
func (c *Client) Resync(addr uint32, mode byte) error {
	logger.Logf(logger.Allow, "gbxcart", "resync at %#x", addr)

	err := c.StopRead()
	if err != nil {
		return err
	}
	c.delay(ResyncDelay)

	err = c.FlushInput()
	if err != nil {
		return err
	}

	err = c.SendNumber(SetStartAddress, addr)
	if err != nil {
		return err
	}
	return c.SendMode(mode)
}

// ReadFlashID returns the two byte ID of the flash chip on a GBA cartridge.
// A value of 0xff, 0xff means that there is no flash chip.
func (c *Client) ReadFlashID() ([2]byte, error) {
	var id [2]byte

	err := c.SendMode(GBAFlashReadID)
	if err != nil {
		return id, err
	}
	c.delay(FlashIDDelay)

	b, err := c.ReadBlock(2)
	if err != nil {
		return id, err
	}
	copy(id[:], b)

	return id, nil
}

// Sample reads n bytes from addr using the specified read mode. The stream
// is stopped after the read.
func (c *Client) Sample(addr uint32, mode byte, n int) ([]byte, error) {
	err := c.SendNumber(SetStartAddress, addr)
	if err != nil {
		return nil, err
	}
	err = c.SendMode(mode)
	if err != nil {
		return nil, err
	}

	b, err := c.ReadBlock(n)
	if err != nil {
		return nil, err
	}

	return b, c.StopRead()
}

// FastReadCheck asks the reader to send FastReadCheckSize bytes and returns
// true if they arrive quickly enough for the fast read commands to be usable.
func (c *Client) FastReadCheck() (bool, error) {
	err := c.SendMode(FastReadCheck)
	if err != nil {
		return false, err
	}

	count := 0
	for range fastReadCheckPolls {
		b, err := c.Poll(ChunkSize)
		if err != nil {
			return false, err
		}
		count += len(b)
		if count >= FastReadCheckSize {
			return true, nil
		}
		c.delay(time.Millisecond)
	}

	// discard anything that might arrive late
	return false, c.FlushInput()
}

// Responds returns true if the reader answers the CartMode command with a
// valid value. Suitable for use as a serial.Probe.
func (c *Client) Responds() bool {
	if c.StopRead() != nil {
		return false
	}
	if c.FlushInput() != nil {
		return false
	}
	v, err := c.RequestValue(CartMode)
	if err != nil {
		return false
	}
	return v == ModeGB || v == ModeGBA
}

// Connect performs the start up sequence. Any operation that was running on
// the reader is stopped before the versions of the reader are queried. The
// voltage is set to 3.3V.
func (c *Client) Connect() error {
	err := c.StopRead()
	if err != nil {
		return err
	}
	err = c.FlushInput()
	if err != nil {
		return err
	}

	c.CartMode, err = c.RequestValue(CartMode)
	if err != nil {
		return err
	}
	c.PCB, err = c.RequestValue(ReadPCB)
	if err != nil {
		return err
	}
	c.Firmware, err = c.RequestValue(ReadFirmware)
	if err != nil {
		return err
	}

	err = c.SendMode(Voltage3V)
	if err != nil {
		return err
	}

	c.FastRead, err = c.FastReadCheck()
	if err != nil {
		return err
	}

	logger.Logf(logger.Allow, "gbxcart", "pcb v%d, firmware R%d, cart mode %d, fast read %v",
		c.PCB, c.Firmware, c.CartMode, c.FastRead)

	return nil
}

// Close the underlying link.
func (c *Client) Close() error {
	return c.link.Close()
}
