package generate

import (
	"errors"
	"testing"

	"github.com/castrumai/examai/internal/model"
)

func TestAllocateTopicsSamplesDistinct(t *testing.T) {
	subTopics := []string{"a", "b", "c", "d", "e"}

	got, err := AllocateTopics(subTopics, 3)
	if err != nil {
		t.Fatalf("AllocateTopics: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := make(map[string]int)
	for _, topic := range got {
		seen[topic]++
		if seen[topic] > 1 {
			t.Errorf("topic %q repeated while n <= catalogue size", topic)
		}
	}
}

func TestAllocateTopicsCoverage(t *testing.T) {
	// 7 questions over 3 sub-topics: every sub-topic at least twice, one of
	// them three times.
	subTopics := []string{"x", "y", "z"}

	got, err := AllocateTopics(subTopics, 7)
	if err != nil {
		t.Fatalf("AllocateTopics: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}

	counts := make(map[string]int)
	for _, topic := range got {
		counts[topic]++
	}
	threes := 0
	for _, topic := range subTopics {
		switch counts[topic] {
		case 2:
		case 3:
			threes++
		default:
			t.Errorf("topic %q allocated %d times, want 2 or 3", topic, counts[topic])
		}
	}
	if threes != 1 {
		t.Errorf("%d topics allocated three times, want exactly 1", threes)
	}
}

func TestAllocateTopicsExactMultiple(t *testing.T) {
	subTopics := []string{"x", "y"}

	got, err := AllocateTopics(subTopics, 6)
	if err != nil {
		t.Fatalf("AllocateTopics: %v", err)
	}
	counts := make(map[string]int)
	for _, topic := range got {
		counts[topic]++
	}
	if counts["x"] != 3 || counts["y"] != 3 {
		t.Errorf("counts = %v, want 3 each", counts)
	}
}

func TestAllocateTopicsErrors(t *testing.T) {
	if _, err := AllocateTopics([]string{"a"}, 0); err == nil {
		t.Error("expected error for n = 0")
	}
	if _, err := AllocateTopics([]string{"a"}, -2); err == nil {
		t.Error("expected error for negative n")
	}
	if _, err := AllocateTopics(nil, 3); !errors.Is(err, model.ErrNoSubTopics) {
		t.Errorf("empty catalogue: got %v, want ErrNoSubTopics", err)
	}
}
