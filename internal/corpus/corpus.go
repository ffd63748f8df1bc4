// Package corpus holds the static index of the pre-chunked knowledge corpus:
// which source files belong to which topic group, and which sub-topics anchor
// question generation within a group. The index is fixed at compile time and
// immutable at runtime.
package corpus

import (
	"fmt"
	"strings"

	"github.com/castrumai/examai/internal/model"
)

// topicGroups maps a topic group id to the canonical names of its member
// source files. Canonical casing is preserved for display and for filter
// arguments passed to the similarity-search service; matching is
// case-insensitive.
var topicGroups = map[string][]string{
	"aerodynamics": {
		"Aerodynamics_Fundamentals.pdf",
		"Flight_Controls.pdf",
		"High_Speed_Flight.pdf",
	},
	"propulsion": {
		"Piston_Engines.pdf",
		"Gas_Turbines.pdf",
		"Propellers.pdf",
	},
	"structures": {
		"Airframe_Structures.pdf",
		"Materials_And_Hardware.pdf",
	},
	"systems": {
		"Hydraulic_Systems.pdf",
		"Electrical_Systems.pdf",
		"Fuel_Systems.pdf",
	},
	"regulations": {
		"Airworthiness_Regulations.pdf",
		"Maintenance_Procedures.pdf",
	},
}

// subTopics maps a topic group id to the ordered sub-topic labels used to
// anchor individual questions. Every group reachable from a request must
// have at least one entry.
var subTopics = map[string][]string{
	"aerodynamics": {
		"lift generation",
		"types of drag",
		"stall and spin behavior",
		"primary flight controls",
		"high-lift devices",
	},
	"propulsion": {
		"piston engine operating cycle",
		"gas turbine sections",
		"propeller pitch and feathering",
		"fuel metering",
		"engine instrumentation",
	},
	"structures": {
		"airframe load paths",
		"structural materials",
		"fasteners and hardware",
		"corrosion types",
	},
	"systems": {
		"hydraulic system components",
		"electrical power distribution",
		"fuel system layout",
		"landing gear operation",
	},
	"regulations": {
		"airworthiness directives",
		"maintenance release requirements",
		"inspection intervals",
	},
}

var (
	fileToGroup     map[string]string
	fileToCanonical map[string]string
	allFiles        []string
)

func init() {
	fileToGroup = make(map[string]string)
	fileToCanonical = make(map[string]string)
	for group, files := range topicGroups {
		for _, f := range files {
			upper := strings.ToUpper(f)
			fileToGroup[upper] = group
			fileToCanonical[upper] = f
			allFiles = append(allFiles, f)
		}
	}
}

// IsGroup reports whether id names a topic group.
func IsGroup(id string) bool {
	_, ok := topicGroups[id]
	return ok
}

// GroupFiles returns the canonical member file names of a topic group.
func GroupFiles(id string) ([]string, bool) {
	files, ok := topicGroups[id]
	return files, ok
}

// GroupForFile resolves a file name (case-insensitive) to its topic group.
func GroupForFile(name string) (string, bool) {
	g, ok := fileToGroup[strings.ToUpper(name)]
	return g, ok
}

// CanonicalFile resolves a file name (case-insensitive) to its canonical
// casing.
func CanonicalFile(name string) (string, bool) {
	c, ok := fileToCanonical[strings.ToUpper(name)]
	return c, ok
}

// AllFiles returns every canonical file name in the corpus.
func AllFiles() []string {
	out := make([]string, len(allFiles))
	copy(out, allFiles)
	return out
}

// SubTopics returns the ordered sub-topic catalogue for a topic group.
// A reachable group with no catalogue is a hard error: generation without a
// topic to anchor to is meaningless.
func SubTopics(groupID string) ([]string, error) {
	ts, ok := subTopics[groupID]
	if !ok || len(ts) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrNoSubTopics, groupID)
	}
	out := make([]string, len(ts))
	copy(out, ts)
	return out, nil
}

// SubTopicsForFiles returns the combined sub-topic catalogue of the groups
// owning the given files, without duplicates, in corpus order.
func SubTopicsForFiles(files []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, f := range files {
		group, ok := GroupForFile(f)
		if !ok {
			continue
		}
		ts, err := SubTopics(group)
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: files %v", model.ErrNoSubTopics, files)
	}
	return out, nil
}
