package extract

import (
	"testing"
)

func newNoteClassExtractor() *NoteClassExtractor {
	return NewNoteClassExtractor(NewFieldExtractor(NewPatternLibrary()))
}

func TestExtractNoteClassesSeniorFirst(t *testing.T) {
	e := newNoteClassExtractor()

	text := "The Class B-2 Notes are subordinated to the Class A Notes. " +
		"Both classes benefit from subordination and credit enhancement. " +
		"I expect principal to be paid sequentially."

	classes := e.ExtractNoteClasses(text)
	if len(classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(classes))
	}
	if classes[0].ClassLabel != "A" || classes[1].ClassLabel != "B-2" {
		t.Errorf("expected senior-first order [A B-2], got [%s %s]",
			classes[0].ClassLabel, classes[1].ClassLabel)
	}
	if classes[0].SubordinationLevel != 1 || classes[1].SubordinationLevel != 2 {
		t.Errorf("expected subordination levels 1 and 2, got %d and %d",
			classes[0].SubordinationLevel, classes[1].SubordinationLevel)
	}
	for _, c := range classes {
		if c.ClassLabel == "I" {
			t.Error("pronoun 'I' must never survive as a class label")
		}
	}
}

func TestExtractNoteClassesZeroIsValid(t *testing.T) {
	e := newNoteClassExtractor()

	// A class-count claim alone never fabricates records.
	text := "The transaction will issue five classes of notes at a later date."
	if classes := e.ExtractNoteClasses(text); len(classes) != 0 {
		t.Errorf("expected no classes, got %d", len(classes))
	}
}

func TestExtractNoteClassesLooseFallback(t *testing.T) {
	e := newNoteClassExtractor()

	// No "Class X Notes" phrasing; the loose patterns must still find A-1
	// because it sits near financial context.
	text := "The A-1 Notes were issued with subordination provided by the junior securities."
	classes := e.ExtractNoteClasses(text)
	if len(classes) != 1 || classes[0].ClassLabel != "A-1" {
		t.Fatalf("expected single class A-1, got %+v", classes)
	}
}

func TestIsValidNoteClass(t *testing.T) {
	context := "the Notes benefit from subordination and a rating from Moody's"

	tests := []struct {
		candidate string
		text      string
		pos       int
		expected  bool
	}{
		{"A-1", context, 10, true},
		{"B", context, 10, true},
		{"I", context, 10, false},    // blocked single letter, context irrelevant
		{"O", context, 10, false},
		{"THE", context, 10, false},  // blocked short word
		{"AND", context, 10, false},
		{"ABCDEF", context, 10, false}, // too long
		{"A", "nothing financial anywhere in this sentence about gardening", 10, false},
		{"", context, 10, false},
	}

	for _, tc := range tests {
		if got := IsValidNoteClass(tc.candidate, tc.text, tc.pos); got != tc.expected {
			t.Errorf("candidate %q in %q: expected %v, got %v",
				tc.candidate, tc.text, tc.expected, got)
		}
	}
}

func TestSubordinationLevel(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"A", 1},
		{"A-1", 1},
		{"B", 2},
		{"B-2", 2},
		{"C", 3},
		{"D", 4},
		{"E", 5},
		{"M-1", 5},
		{"", 5},
	}

	for _, tc := range tests {
		if got := SubordinationLevel(tc.label); got != tc.expected {
			t.Errorf("label %q: expected %d, got %d", tc.label, tc.expected, got)
		}
	}
}

func TestExtractClassDetail(t *testing.T) {
	e := newNoteClassExtractor()

	text := "The Class A Notes were issued in an aggregate principal amount of " +
		"$500 million, bearing interest at 5.25% per annum, rated Aaa (sf) by " +
		"Moody's. Credit enhancement level: 12.5%."

	classes := e.ExtractNoteClasses(text)
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}

	c := classes[0]
	if c.ClassLabel != "A" {
		t.Errorf("expected label A, got %s", c.ClassLabel)
	}
	if c.OriginalBalance != 500_000_000 {
		t.Errorf("expected balance 500000000, got %f", c.OriginalBalance)
	}
	if c.InterestRate != 5.25 {
		t.Errorf("expected rate 5.25, got %f", c.InterestRate)
	}
	if c.Rating != "Aaa (sf)" {
		t.Errorf("expected rating %q, got %q", "Aaa (sf)", c.Rating)
	}
	if c.EnhancementLevel != 12.5 {
		t.Errorf("expected enhancement 12.5, got %f", c.EnhancementLevel)
	}
}
