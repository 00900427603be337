package domain

// Header is the prefix of one framed file on the wire.
// Exactly Size payload bytes follow it, whatever the value.
type Header struct {
	Name string
	Size uint64
}
