package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Sum([]byte("abc")); got != want {
		t.Errorf("Sum(abc) = %s, want %s", got, want)
	}
}

func TestMatchesETag(t *testing.T) {
	etag := ETag([]byte("abc"))

	tests := []struct {
		header string
		want   bool
	}{
		{etag, true},
		{"W/" + etag, true},
		{`"other", ` + etag, true},
		{"*", true},
		{`"other"`, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := MatchesETag(tt.header, etag); got != tt.want {
			t.Errorf("MatchesETag(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
