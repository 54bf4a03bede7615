package roster

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleChars() []Character {
	return []Character{
		{
			Name:      "Nurse",
			ImagePath: "media/Nurse.png",
			Streaks: []Streak{
				{Name: "4k", Current: 2, Best: 5},
				{Name: "Retired category", Current: 0, Best: 9},
			},
		},
		{
			Name:      "Survivor",
			ImagePath: "media/Survivor.png",
			Streaks: []Streak{
				// Out-of-invariant values pass through the codec untouched.
				{Name: "Solo escape", Current: 7, Best: 3},
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	chars := sampleChars()
	var buf bytes.Buffer
	if err := Encode(&buf, chars); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, chars) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", chars, got)
	}
}

func TestEncodeShape(t *testing.T) {
	chars := []Character{
		{
			Name:      "Nurse",
			ImagePath: "media/Nurse.png",
			Streaks:   []Streak{{Name: "4k", Current: 2, Best: 5}},
		},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, chars); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[
  {
    "name": "Nurse",
    "image_path": "media/Nurse.png",
    "streaks": [
      {
        "name": "4k",
        "current": 2,
        "best": 5
      }
    ]
  }
]
`
	if buf.String() != want {
		t.Fatalf("unexpected encoding:\nwant:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestEncodeDeterministic(t *testing.T) {
	chars := sampleChars()
	var first, second bytes.Buffer
	if err := Encode(&first, chars); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := Encode(&second, chars); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("expected identical encodings for equal input")
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, input := range []string{"{not json", `[{"name": "Nurse"`, `[] trailing`} {
		if _, err := Decode(strings.NewReader(input)); err == nil {
			t.Fatalf("expected decode error for %q", input)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	dir := t.TempDir()
	chars, err := LoadFile(filepath.Join(dir, "streaks.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(chars) != 0 {
		t.Fatalf("expected empty collection, got %+v", chars)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streaks.json")
	chars := sampleChars()
	if err := SaveFile(path, chars); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, chars) {
		t.Fatalf("file round trip mismatch:\nwant %+v\ngot  %+v", chars, got)
	}
}
