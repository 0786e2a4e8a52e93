package openapi

import "testing"

func TestParseSource(t *testing.T) {
	cases := []struct {
		raw      string
		kind     SourceKind
		location string
		wantErr  bool
	}{
		{raw: "specs/../specs/quizzes.yaml", kind: SourceKindFile, location: "specs/quizzes.yaml"},
		{raw: " https://api.test/openapi.yaml ", kind: SourceKindURL, location: "https://api.test/openapi.yaml"},
		{raw: "HTTP://api.test/openapi.json", kind: SourceKindURL, location: "HTTP://api.test/openapi.json"},
		{raw: "https://", wantErr: true},
		{raw: "   ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			src, err := ParseSource(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if src.Kind() != tc.kind || src.Location() != tc.location {
				t.Fatalf("got %s %q", src.Kind(), src.Location())
			}
		})
	}
}

func TestSourceFromURLPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	SourceFromURL("not a url")
}

func TestSourceFromFSTrimsRoot(t *testing.T) {
	if got := SourceFromFS("/specs/quizzes.yaml").Location(); got != "specs/quizzes.yaml" {
		t.Fatalf("location = %q", got)
	}
}
