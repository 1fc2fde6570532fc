package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/manager"
	"braind/pkg/types"
)

// Classifier maps an incoming request to a required capability and a
// confidence score by delegating to the always-resident main brain.
type Classifier struct {
	mgr      *manager.Manager
	settings *config.Store
	log      zerolog.Logger
	pub      manager.EventPublisher
}

// NewClassifier wires a classifier to the lifecycle manager's main brain.
func NewClassifier(mgr *manager.Manager, settings *config.Store, log zerolog.Logger, pub manager.EventPublisher) *Classifier {
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Classifier{mgr: mgr, settings: settings, log: log, pub: pub}
}

type noopPublisher struct{}

func (noopPublisher) Publish(manager.Event) {}

// Classify asks the main brain which capability the message needs. The
// brain's reply is expected to contain a JSON object with
// primary_capability and confidence; replies without parseable JSON fall
// back to keyword detection on the message itself. A main brain failure
// surfaces as ClassifierUnavailable.
func (c *Classifier) Classify(ctx context.Context, message string) (types.Capability, float64, error) {
	lease, err := c.mgr.Acquire(ctx, c.mgr.MainID())
	if err != nil {
		return "", 0, ErrClassifierUnavailable(err)
	}
	defer lease.Release()

	st := c.settings.Current()
	ictx, cancel := context.WithTimeout(ctx, st.InvokeTimeout)
	defer cancel()
	out, err := lease.Backend().Invoke(ictx, backend.Input{
		Message:    classificationPrompt(message),
		Capability: types.CapabilityText,
	})
	if err != nil {
		return "", 0, ErrClassifierUnavailable(err)
	}

	cap, conf := parseClassification(out.Content, message)
	c.log.Debug().Str("capability", string(cap)).Float64("confidence", conf).Msg("classified")
	c.pub.Publish(manager.Event{Name: manager.EventClassified, Fields: map[string]any{
		"capability": string(cap),
		"confidence": conf,
	}})
	return cap, conf, nil
}

// classificationPrompt frames the message for the main brain.
func classificationPrompt(message string) string {
	var b strings.Builder
	b.WriteString("Analyze this user request and determine which capability is needed.\n\n")
	fmt.Fprintf(&b, "User request: %q\n\n", message)
	b.WriteString("Available capabilities: ")
	for i, cap := range types.Capabilities() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(cap))
	}
	b.WriteString("\n\nReply with a JSON object: ")
	b.WriteString(`{"primary_capability": "...", "confidence": 0.95}`)
	return b.String()
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// classification is the JSON shape the main brain is asked to produce.
type classification struct {
	PrimaryCapability string  `json:"primary_capability"`
	Confidence        float64 `json:"confidence"`
}

// parseClassification extracts (capability, confidence) from the brain's
// reply, falling back to keyword detection on the original message when the
// reply carries no usable JSON.
func parseClassification(reply, message string) (types.Capability, float64) {
	if raw := jsonObjectRe.FindString(reply); raw != "" {
		var cl classification
		if err := json.Unmarshal([]byte(raw), &cl); err == nil {
			if cap, err := types.ParseCapability(cl.PrimaryCapability); err == nil {
				conf := cl.Confidence
				if conf < 0 {
					conf = 0
				} else if conf > 1 {
					conf = 1
				}
				return cap, conf
			}
		}
	}
	return keywordClassify(message)
}

// capabilityKeywords drives the fallback detection. First match in listed
// order wins.
var capabilityKeywords = []struct {
	cap      types.Capability
	keywords []string
}{
	{types.CapabilityVision, []string{"image", "photo", "picture", "visual", "see", "look"}},
	{types.CapabilitySpeechInput, []string{"transcribe", "listen", "hear", "speech to text"}},
	{types.CapabilitySpeechOutput, []string{"speak", "say", "tts", "text to speech", "read aloud"}},
	{types.CapabilityVideo, []string{"video", "movie", "clip", "recording"}},
	{types.CapabilityDocument, []string{"pdf", "document", "extract"}},
	{types.CapabilityAudioGeneration, []string{"music", "sound", "compose"}},
	{types.CapabilityEmbedding, []string{"search", "similar", "find", "memory"}},
}

// keywordClassify is the last-resort detector: a keyword hit yields a
// moderate confidence, otherwise the request defaults to text with low
// confidence so the main brain serves it.
func keywordClassify(message string) (types.Capability, float64) {
	lower := strings.ToLower(message)
	for _, entry := range capabilityKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.cap, 0.7
			}
		}
	}
	return types.CapabilityText, 0.3
}
