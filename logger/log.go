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

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry represents a single line/entry in the log
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.Repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is a bounded list of log entries. Consecutive entries with the same
// tag and detail are collapsed into a single entry with a repeat count.
//
// The central logger used by the package level functions is an instance of
// this type but a Logger can be created independently with NewLogger(). This
// is useful for testing.
type Logger struct {
	crit sync.Mutex

	maxEntries int
	entries    []Entry

	// the number of entries at the last call to writeRecent()
	recentStart int

	echo          io.Writer
	echoRecent    bool
	echoLastEntry *Entry
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger(maxEntries int) *Logger {
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

// detail arguments are converted to strings according to type. errors use
// the Error() function and Stringers use the String() function. everything
// else is formatted with the %v verb
func detailString(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Log adds an entry to the logger if permission allows it.
func (l *Logger) Log(perm Permission, tag string, detail any) {
	if perm != Allow && !perm.AllowLogging() {
		return
	}
	l.log(tag, detailString(detail))
}

// Logf adds a formatted entry to the logger if permission allows it.
func (l *Logger) Logf(perm Permission, tag string, detail string, args ...any) {
	if perm != Allow && !perm.AllowLogging() {
		return
	}
	l.log(tag, fmt.Sprintf(detail, args...))
}

func (l *Logger) log(tag, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	// remove all newline characters from tag and detail string
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var e *Entry
	if len(l.entries) > 0 {
		e = &l.entries[len(l.entries)-1]
	}

	if e == nil || detail != e.Detail || tag != e.Tag {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		e = &l.entries[len(l.entries)-1]
	} else {
		e.Repeated++
		e.Timestamp = time.Now()
	}

	// maintain maximum length
	if len(l.entries) > l.maxEntries {
		d := len(l.entries) - l.maxEntries
		l.entries = l.entries[d:]
		l.recentStart = max(0, l.recentStart-d)
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		if l.echoRecent {
			l.writeRecent(l.echo)
		} else if e.Repeated == 0 {
			io.WriteString(l.echo, e.String())
		}
	}
}

// Clear all entries from the logger.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.entries = l.entries[:0]
	l.recentStart = 0
}

// Write contents of the logger to io.Writer.
func (l *Logger) Write(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	for _, e := range l.entries {
		io.WriteString(output, e.String())
	}
}

// WriteRecent writes only the entries added since the last call to
// WriteRecent.
func (l *Logger) WriteRecent(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.writeRecent(output)
}

func (l *Logger) writeRecent(output io.Writer) {
	if l.recentStart > len(l.entries) {
		l.recentStart = 0
	}
	for _, e := range l.entries[l.recentStart:] {
		io.WriteString(output, e.String())
	}
	l.recentStart = len(l.entries)
}

// Tail writes the last N entries to io.Writer.
func (l *Logger) Tail(output io.Writer, number int) {
	l.crit.Lock()
	defer l.crit.Unlock()

	// cap number to the number of entries
	number = min(number, len(l.entries))

	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// SetEcho prints new log entries to io.Writer as they are made. A nil writer
// turns echoing off. If writeRecent is true then any entries that have been
// missed since the last call to WriteRecent() are echoed too.
func (l *Logger) SetEcho(output io.Writer, writeRecent bool) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.echo = output
	l.echoRecent = writeRecent
}
