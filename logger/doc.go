// Package logger is the central logging facility for gbxfs. Log entries are
// made with a tag, usually the name of the package making the entry, and a
// detail.
//
//	logger.Logf(logger.Allow, "gbxcart", "firmware version %d", v)
//
// The Permission interface allows an environment to prevent log entries being
// made. The Allow value should be used when an entry should always be made.
//
// Entries that repeat the previous entry exactly are not added. Instead the
// previous entry is marked as being repeated. The number of entries in the
// central log is bounded and older entries are forgotten.
package logger
