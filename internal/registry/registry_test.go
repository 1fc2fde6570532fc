package registry

import (
	"strings"
	"testing"

	"braind/pkg/types"
)

func validCatalog() []types.BackendSpec {
	return []types.BackendSpec{
		{ID: "brain", Capability: types.CapabilityText, Priority: 1, Enabled: true},
		{ID: "blip", Capability: types.CapabilityVision, Priority: 2, Enabled: true},
		{ID: "blip-fast", Capability: types.CapabilityVision, Priority: 1, Enabled: true},
		{ID: "blip-old", Capability: types.CapabilityVision, Priority: 1, Enabled: false},
		{ID: "whisper", Capability: types.CapabilitySpeechInput, Priority: 1, Enabled: true},
	}
}

func TestNewRejectsMalformedCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		specs   []types.BackendSpec
		mainID  string
		wantMsg string
	}{
		{
			name:    "missing id",
			specs:   []types.BackendSpec{{Capability: types.CapabilityText, Enabled: true}},
			mainID:  "brain",
			wantMsg: "missing id",
		},
		{
			name:    "missing capability",
			specs:   []types.BackendSpec{{ID: "brain", Enabled: true}},
			mainID:  "brain",
			wantMsg: "missing capability",
		},
		{
			name:    "unknown capability",
			specs:   []types.BackendSpec{{ID: "brain", Capability: "telepathy", Enabled: true}},
			mainID:  "brain",
			wantMsg: "unknown capability",
		},
		{
			name: "duplicate id",
			specs: []types.BackendSpec{
				{ID: "brain", Capability: types.CapabilityText, Enabled: true},
				{ID: "brain", Capability: types.CapabilityVision, Enabled: true},
			},
			mainID:  "brain",
			wantMsg: "duplicate backend id",
		},
		{
			name:    "negative priority",
			specs:   []types.BackendSpec{{ID: "brain", Capability: types.CapabilityText, Priority: -1, Enabled: true}},
			mainID:  "brain",
			wantMsg: "negative priority",
		},
		{
			name:    "main missing",
			specs:   validCatalog(),
			mainID:  "ghost",
			wantMsg: "not in catalog",
		},
		{
			name:    "main empty",
			specs:   validCatalog(),
			mainID:  "",
			wantMsg: "main backend id is required",
		},
		{
			name:    "main disabled",
			specs:   []types.BackendSpec{{ID: "brain", Capability: types.CapabilityText, Enabled: false}},
			mainID:  "brain",
			wantMsg: "disabled",
		},
		{
			name:    "main not text",
			specs:   validCatalog(),
			mainID:  "whisper",
			wantMsg: "must serve text",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.specs, tc.mainID)
			if err == nil {
				t.Fatal("New accepted a malformed catalog")
			}
			if !IsConfigError(err) {
				t.Errorf("err = %v, want config error", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("err = %q, want it to mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestLookupOrdersByPriority(t *testing.T) {
	r, err := New(validCatalog(), "brain")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := r.Lookup(types.CapabilityVision)
	if len(got) != 2 {
		t.Fatalf("Lookup(vision) returned %d specs, want 2 (disabled excluded)", len(got))
	}
	if got[0].ID != "blip-fast" || got[1].ID != "blip" {
		t.Errorf("order = [%s %s], want [blip-fast blip]", got[0].ID, got[1].ID)
	}

	if got := r.Lookup(types.CapabilityVideo); len(got) != 0 {
		t.Errorf("Lookup(video) = %v, want empty", got)
	}
}

func TestLookupTiesKeepInsertionOrder(t *testing.T) {
	specs := []types.BackendSpec{
		{ID: "brain", Capability: types.CapabilityText, Priority: 1, Enabled: true},
		{ID: "first", Capability: types.CapabilityDocument, Priority: 1, Enabled: true},
		{ID: "second", Capability: types.CapabilityDocument, Priority: 1, Enabled: true},
	}
	r, err := New(specs, "brain")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := r.Lookup(types.CapabilityDocument)
	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "second" {
		t.Errorf("tie order = %v, want catalog insertion order", got)
	}
}

func TestGetAndMain(t *testing.T) {
	r, err := New(validCatalog(), "brain")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s, ok := r.Get("whisper"); !ok || s.Capability != types.CapabilitySpeechInput {
		t.Errorf("Get(whisper) = %+v, %v", s, ok)
	}
	if _, ok := r.Get("ghost"); ok {
		t.Error("Get(ghost) found a spec")
	}
	if r.MainID() != "brain" {
		t.Errorf("MainID = %q, want brain", r.MainID())
	}
	if m := r.Main(); m.ID != "brain" || m.Capability != types.CapabilityText {
		t.Errorf("Main = %+v", m)
	}
	if got := len(r.All()); got != len(validCatalog()) {
		t.Errorf("All returned %d specs, want %d", got, len(validCatalog()))
	}
}
