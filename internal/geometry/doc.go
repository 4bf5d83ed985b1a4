// Package geometry scales a fixed reference drawing onto a target circle.
package geometry
