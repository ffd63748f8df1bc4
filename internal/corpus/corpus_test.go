package corpus

import (
	"errors"
	"reflect"
	"testing"

	"github.com/castrumai/examai/internal/model"
)

func TestIsGroup(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"propulsion", true},
		{"aerodynamics", true},
		{"Propulsion", false},
		{"engines", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsGroup(tt.id); got != tt.want {
				t.Errorf("IsGroup(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestCanonicalFileCaseInsensitive(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"Propellers.pdf", "Propellers.pdf", true},
		{"propellers.pdf", "Propellers.pdf", true},
		{"PROPELLERS.PDF", "Propellers.pdf", true},
		{"Unknown.pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalFile(tt.name)
			if ok != tt.ok || got != tt.want {
				t.Errorf("CanonicalFile(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGroupForFile(t *testing.T) {
	group, ok := GroupForFile("gas_turbines.pdf")
	if !ok || group != "propulsion" {
		t.Errorf("GroupForFile = (%q, %v), want (propulsion, true)", group, ok)
	}
	if _, ok := GroupForFile("nope.pdf"); ok {
		t.Error("GroupForFile should miss on unknown file")
	}
}

func TestSubTopics(t *testing.T) {
	subs, err := SubTopics("propulsion")
	if err != nil {
		t.Fatalf("SubTopics: %v", err)
	}
	if len(subs) == 0 {
		t.Fatal("propulsion has no sub-topics")
	}
	if subs[0] != "piston engine operating cycle" {
		t.Errorf("sub-topic order not preserved: first = %q", subs[0])
	}

	if _, err := SubTopics("nonexistent"); !errors.Is(err, model.ErrNoSubTopics) {
		t.Errorf("got %v, want ErrNoSubTopics", err)
	}
}

func TestSubTopicsReturnsCopy(t *testing.T) {
	subs, err := SubTopics("structures")
	if err != nil {
		t.Fatalf("SubTopics: %v", err)
	}
	subs[0] = "mutated"
	again, _ := SubTopics("structures")
	if again[0] == "mutated" {
		t.Error("SubTopics exposes internal state")
	}
}

func TestSubTopicsForFiles(t *testing.T) {
	// Two files from the same group must not duplicate the catalogue.
	subs, err := SubTopicsForFiles([]string{"Piston_Engines.pdf", "Gas_Turbines.pdf"})
	if err != nil {
		t.Fatalf("SubTopicsForFiles: %v", err)
	}
	want, _ := SubTopics("propulsion")
	if !reflect.DeepEqual(subs, want) {
		t.Errorf("subs = %v, want %v", subs, want)
	}

	if _, err := SubTopicsForFiles([]string{"unknown.pdf"}); !errors.Is(err, model.ErrNoSubTopics) {
		t.Errorf("got %v, want ErrNoSubTopics for unresolvable files", err)
	}
}

func TestAllFilesCoverEveryGroup(t *testing.T) {
	files := AllFiles()
	if len(files) == 0 {
		t.Fatal("empty corpus")
	}
	groups := make(map[string]bool)
	for _, f := range files {
		g, ok := GroupForFile(f)
		if !ok {
			t.Errorf("file %q has no group", f)
			continue
		}
		groups[g] = true
	}
	for id := range topicGroups {
		if !groups[id] {
			t.Errorf("group %q has no files in AllFiles()", id)
		}
	}
}
