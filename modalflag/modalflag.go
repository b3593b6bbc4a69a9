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

package modalflag

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// Modes handles a command line made up of modes, each of which has its own
// set of flags. Help messages are written to Output, or to os.Stdout if
// Output is nil.
type Modes struct {
	Output io.Writer

	// flags for the current mode. replaced by NewArgs() and NewMode()
	flags *flag.FlagSet

	args []string

	// index of the first argument that has not been consumed by an earlier
	// mode
	cursor int

	// the sub-modes of the current mode. the first is the default
	subModes []string

	// every mode selected by Parse() so far
	selected []string

	// printed after the flags of the current mode
	help string
}

func (md *Modes) String() string {
	return md.Path()
}

// Mode returns the most recently selected mode.
func (md *Modes) Mode() string {
	if len(md.selected) == 0 {
		return ""
	}
	return md.selected[len(md.selected)-1]
}

// Path returns every selected mode, separated by a slash.
func (md *Modes) Path() string {
	return strings.Join(md.selected, "/")
}

// NewArgs sets the arguments to be parsed and starts a new mode.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.cursor = 0
	md.NewMode()
}

// NewMode starts a new mode. Flags and sub-modes added after this call apply
// to the arguments that follow the most recently selected mode.
func (md *Modes) NewMode() {
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.subModes = nil
	md.help = ""
}

// AdditionalHelp sets text to print after the list of flags when help is
// requested for the current mode.
func (md *Modes) AdditionalHelp(help string) {
	md.help = help
}

// ParseResult is returned from the Parse() function.
type ParseResult int

// List of valid ParseResult values.
const (
	// the caller should continue. if sub-modes were added then Mode() returns
	// the selected mode
	ParseContinue ParseResult = iota

	// help was requested and has been printed
	ParseHelp

	// the arguments could not be parsed. the error is returned alongside
	ParseError
)

// Parse the arguments of the current mode.
//
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		return nil
//	case modalflag.ParseError:
//		return err
//	}
//
// If the first argument after the flags names a sub-mode then that mode is
// selected. Otherwise the first sub-mode is selected and the argument is left
// for the next call to Parse().
func (md *Modes) Parse() (ParseResult, error) {
	usage := &usageBuffer{}
	md.flags.SetOutput(usage)

	err := md.flags.Parse(md.args[md.cursor:])
	if errors.Is(err, flag.ErrHelp) {
		output := md.Output
		if output == nil {
			output = os.Stdout
		}
		usage.print(output, md.Path(), md.subModes, md.help)
		return ParseHelp, nil
	}

	if len(md.subModes) == 0 {
		if err != nil {
			return ParseError, err
		}
		return ParseContinue, nil
	}

	// an unrecognised flag is left for the default sub-mode to parse
	mode := md.subModes[0]
	if err == nil {
		if arg := strings.ToUpper(md.flags.Arg(0)); slices.Contains(md.subModes, arg) {
			mode = arg
			md.cursor++
		}
	}
	md.selected = append(md.selected, mode)

	return ParseContinue, nil
}

// RemainingArgs returns the arguments that are not flags or a sub-mode.
func (md *Modes) RemainingArgs() []string {
	return md.flags.Args()
}

// GetArg returns the numbered argument that is not a flag or a sub-mode.
func (md *Modes) GetArg(i int) string {
	return md.flags.Arg(i)
}

// AddSubModes adds modes that can be selected by the next call to Parse(). The
// first sub-mode is the default. Comparisons are not case sensitive.
func (md *Modes) AddSubModes(subModes ...string) {
	for _, m := range subModes {
		md.subModes = append(md.subModes, strings.ToUpper(m))
	}
}

// AddBool flag for the next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddDuration flag for the next call to Parse().
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// AddInt flag for the next call to Parse().
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddString flag for the next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddAlias adds a second name for an existing flag. Returns false if there is
// no flag with that name.
func (md *Modes) AddAlias(name string, alias string) bool {
	f := md.flags.Lookup(name)
	if f == nil {
		return false
	}
	md.flags.Var(f.Value, alias, fmt.Sprintf("alias for -%s", name))
	return true
}

// Visit calls fn with the name of every flag that was set on the command line,
// in lexicographical order.
func (md *Modes) Visit(fn func(flag string)) {
	md.flags.Visit(func(f *flag.Flag) {
		fn(f.Name)
	})
}
