// Package logging provides leveled logging on top of the standard log package.
// The level is read once from the environment (DEBUG, LOG_LEVEL) and can be
// raised explicitly with SetLevel, e.g. from a -verbose flag.
package logging
