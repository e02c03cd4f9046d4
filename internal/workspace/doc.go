// Package workspace manages the intermediate artifacts of a single run.
// Everything lives under one scoped temp directory that is removed on every
// exit path, success or failure. The original input file never enters the
// workspace and is therefore never deleted.
package workspace
