package domain

// GeneratedArtifact is the byte payload produced by a generator.
// It is handed to a deliverer once and then dropped.
type GeneratedArtifact struct {
	Filename string
	Bytes    []byte
}

// Size returns the payload length in bytes.
func (a GeneratedArtifact) Size() int { return len(a.Bytes) }
