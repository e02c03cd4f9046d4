// Package geometry fits frames onto the fixed output canvas.
package geometry
