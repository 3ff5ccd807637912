package storage

import (
	"errors"
	"testing"
)

func TestParseURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Location
		wantErr bool
	}{
		{name: "bucket and key", input: "s3://resumes/2024/a.pdf", want: Location{Bucket: "resumes", Key: "2024/a.pdf"}},
		{name: "surrounding spaces", input: "  s3://b/k.docx ", want: Location{Bucket: "b", Key: "k.docx"}},
		{name: "missing scheme", input: "resumes/a.pdf", wantErr: true},
		{name: "missing key", input: "s3://resumes", wantErr: true},
		{name: "empty key", input: "s3://resumes/", wantErr: true},
		{name: "empty bucket", input: "s3:///a.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseURI(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURI) {
					t.Fatalf("expected ErrInvalidURI, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	loc, err := Resolve("uploads/jane_doe.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loc.Bucket != "" || loc.Key != "uploads/jane_doe.pdf" {
		t.Fatalf("unexpected location: %+v", loc)
	}

	loc, err = Resolve("s3://bucket/key.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loc.URI() != "s3://bucket/key.pdf" {
		t.Fatalf("unexpected uri: %q", loc.URI())
	}

	if _, err := Resolve("   "); !errors.Is(err, ErrInvalidURI) {
		t.Fatalf("expected ErrInvalidURI for empty reference, got %v", err)
	}
}
