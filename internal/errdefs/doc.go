// Package errdefs defines the error taxonomy shared by all pipeline stages.
// Stages wrap these sentinels with fmt.Errorf("...: %w", ...) so callers can
// branch on errors.Is without depending on message text.
package errdefs
