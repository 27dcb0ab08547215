package util

import "testing"

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain url",
			text: "See https://example.com/report for details.",
			want: []string{"https://example.com/report"},
		},
		{
			name: "url in parentheses",
			text: "The filing (https://sec.gov/filing-123) was public.",
			want: []string{"https://sec.gov/filing-123"},
		},
		{
			name: "multiple urls preserve order",
			text: "First http://a.example.org then https://b.example.org/x.",
			want: []string{"http://a.example.org", "https://b.example.org/x."},
		},
		{
			name: "no urls",
			text: "Nothing to see here.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractURLs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ExtractURLs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "strips www", url: "https://www.bloomberg.com/news/article", want: "bloomberg.com"},
		{name: "keeps subdomain", url: "https://cloud.google.com/docs", want: "cloud.google.com"},
		{name: "empty input", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DomainFromURL(tt.url); got != tt.want {
				t.Fatalf("DomainFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestMatchURLToBrand(t *testing.T) {
	brands := []string{"Apple", "Samsung Electronics", "AWS"}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "direct domain match", url: "https://www.apple.com/newsroom", want: "Apple"},
		{name: "compact name match", url: "https://samsungelectronics.com/ir", want: "Samsung Electronics"},
		{name: "no match", url: "https://reuters.com/tech", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchURLToBrand(tt.url, brands); got != tt.want {
				t.Fatalf("MatchURLToBrand(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  Apple \n and\tSamsung  compete.  ")
	want := "Apple and Samsung compete."
	if got != want {
		t.Fatalf("CleanText() = %q, want %q", got, want)
	}
}
