package providers

import (
	"testing"
)

func TestParseProfilePreservesIntegerIDs(t *testing.T) {
	profile, err := ParseProfile([]byte(`{"id": 12345678901234567, "premium": true}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}

	id, ok := profile.String("id")
	if !ok {
		t.Fatal("id should be present")
	}
	if id != "12345678901234567" {
		t.Errorf("id = %q, want %q", id, "12345678901234567")
	}

	premium, ok := profile.String("premium")
	if !ok || premium != "true" {
		t.Errorf("premium = %q, %v", premium, ok)
	}
}

func TestParseProfileRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseProfile([]byte(`not json`)); err == nil {
		t.Error("ParseProfile() should fail on invalid JSON")
	}
}

func TestProfileString(t *testing.T) {
	profile, err := ParseProfile([]byte(`{"name": "alice", "age": 30, "nickname": null}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{key: "name", want: "alice", wantOK: true},
		{key: "age", want: "30", wantOK: true},
		{key: "nickname", want: "", wantOK: false},
		{key: "missing", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := profile.String(tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("String(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestProfileStringAt(t *testing.T) {
	profile, err := ParseProfile([]byte(`{"Profile": {"@attributes": {"ref": "abc123"}}}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}

	ref, ok := profile.StringAt("Profile", "@attributes", "ref")
	if !ok || ref != "abc123" {
		t.Errorf("StringAt() = %q, %v", ref, ok)
	}

	if _, ok := profile.StringAt("Profile", "missing", "ref"); ok {
		t.Error("StringAt() through a missing object should report absent")
	}
	if _, ok := profile.StringAt(); ok {
		t.Error("StringAt() with no path should report absent")
	}
}

func TestProfileObjects(t *testing.T) {
	// One element rendered as an object, several as an array.
	single, err := ParseProfile([]byte(`{"emails": {"address": "a@example.com"}}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	list, ok := single.Objects("emails")
	if !ok || len(list) != 1 {
		t.Fatalf("Objects() on single object = %d items, %v", len(list), ok)
	}

	multi, err := ParseProfile([]byte(`{"emails": [{"address": "a@example.com"}, {"address": "b@example.com"}]}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	list, ok = multi.Objects("emails")
	if !ok || len(list) != 2 {
		t.Fatalf("Objects() on array = %d items, %v", len(list), ok)
	}
	if addr, _ := list[1].String("address"); addr != "b@example.com" {
		t.Errorf("second address = %q", addr)
	}

	scalar, err := ParseProfile([]byte(`{"emails": "a@example.com"}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	if _, ok := scalar.Objects("emails"); ok {
		t.Error("Objects() on a scalar should report absent")
	}
}
