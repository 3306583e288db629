package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-10", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{"2024-06-10T08:30:00Z", time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)},
		{"2024-06-10T08:30:00.000Z", time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)},
		{"2024-06-10T02:00:00+02:00", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{"2024-06-10T08:30", time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseDate("next tuesday"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestDateInput(t *testing.T) {
	var body struct {
		A DateInput `json:"a"`
		B DateInput `json:"b"`
		C DateInput `json:"c"`
		D DateInput `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":"2024-06-10","b":null,"c":""}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.A.Set || body.A.Time == nil || body.A.Time.Day() != 10 {
		t.Errorf("a = %+v", body.A)
	}
	if !body.B.Set || body.B.Time != nil {
		t.Errorf("b should be set and cleared: %+v", body.B)
	}
	if !body.C.Set || body.C.Time != nil {
		t.Errorf("c should be set and cleared: %+v", body.C)
	}
	if body.D.Set {
		t.Error("d was absent and should not be set")
	}

	if err := json.Unmarshal([]byte(`{"a":"nope"}`), &body); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestStringList(t *testing.T) {
	var l StringList
	if err := json.Unmarshal([]byte(`[" go ", "", "sql", "go"]`), &l); err != nil {
		t.Fatal(err)
	}
	if len(l) != 3 || l[0] != "go" || l[1] != "sql" || l[2] != "go" {
		t.Errorf("array form = %q", l)
	}

	if err := json.Unmarshal([]byte(`"react, node,, docker "`), &l); err != nil {
		t.Fatal(err)
	}
	if len(l) != 3 || l[2] != "docker" {
		t.Errorf("string form = %q", l)
	}

	if err := json.Unmarshal([]byte(`42`), &l); err == nil {
		t.Error("expected error for number")
	}
}
