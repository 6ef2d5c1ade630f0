package media

import "testing"

func TestTitleFromFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"underscores become spaces", "01_Getting_Started.mp4", "01 Getting Started"},
		{"plain name", "02. Variables.mp4", "02. Variables"},
		{"trims whitespace", " intro .webm", "intro"},
		{"extension only falls back", ".mp4", ".mp4"},
		{"underscores only falls back", "___.mp4", "___.mp4"},
		{"no extension", "Recap", "Recap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TitleFromFilename(tc.in); got != tc.want {
				t.Fatalf("TitleFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSortKeyFromName(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"01. Intro.mp4", 1},
		{"12_Lesson.mp4", 12},
		{"007 Bonus.mkv", 7},
		{"Intro.mp4", UnorderedSortKey},
		{"", UnorderedSortKey},
		{"9999999999999999999999 overflow.mp4", UnorderedSortKey},
	}
	for _, tc := range cases {
		if got := SortKeyFromName(tc.in); got != tc.want {
			t.Fatalf("SortKeyFromName(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusUnwatched, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []Status{"", "watched", "done", "IN-PROGRESS"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
