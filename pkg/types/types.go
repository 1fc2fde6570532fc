package types

import "fmt"

// Capability is a closed set of request categories. Each backend in the
// registry serves exactly one capability.
type Capability string

const (
	CapabilityText            Capability = "text"
	CapabilityVision          Capability = "vision"
	CapabilitySpeechInput     Capability = "speech_input"
	CapabilitySpeechOutput    Capability = "speech_output"
	CapabilityVideo           Capability = "video"
	CapabilityDocument        Capability = "document"
	CapabilityAudioGeneration Capability = "audio_generation"
	CapabilityEmbedding       Capability = "embedding"
)

// Capabilities lists every known capability in stable order.
func Capabilities() []Capability {
	return []Capability{
		CapabilityText,
		CapabilityVision,
		CapabilitySpeechInput,
		CapabilitySpeechOutput,
		CapabilityVideo,
		CapabilityDocument,
		CapabilityAudioGeneration,
		CapabilityEmbedding,
	}
}

// Valid reports whether c is one of the known capabilities.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityText, CapabilityVision, CapabilitySpeechInput,
		CapabilitySpeechOutput, CapabilityVideo, CapabilityDocument,
		CapabilityAudioGeneration, CapabilityEmbedding:
		return true
	}
	return false
}

// ParseCapability converts a string into a Capability or fails.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown capability: %q", s)
	}
	return c, nil
}
