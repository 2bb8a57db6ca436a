package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/docquiz/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteIngestResult(t *testing.T) {
	res := &models.IngestResult{DocumentID: "doc-1", Filename: "notes.txt", Chunks: 3, Summary: "- a\n- b"}

	var buf bytes.Buffer
	if err := WriteIngestResult(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "notes.txt (3 chunks") || !strings.Contains(out, "- a\n- b") {
		t.Errorf("unexpected text output:\n%s", out)
	}

	buf.Reset()
	if err := WriteIngestResult(&buf, res, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.IngestResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded != *res {
		t.Errorf("decoded = %+v, want %+v", decoded, *res)
	}
}

func TestWriteAnswer_Text(t *testing.T) {
	var buf bytes.Buffer
	ans := &AnswerResult{Answer: "Paris", Formatted: `Paris (Source: "The capital...")`}
	if err := WriteAnswer(&buf, ans, OutputText); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != ans.Formatted {
		t.Errorf("got %q", got)
	}
}

func TestWriteVerdict_Text(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteVerdict(&buf, &models.Verdict{Correct: true, CorrectAnswer: "Paris"}, OutputText)
	if strings.TrimSpace(buf.String()) != "Correct!" {
		t.Errorf("correct verdict = %q", buf.String())
	}
	buf.Reset()
	_ = WriteVerdict(&buf, &models.Verdict{Correct: false, CorrectAnswer: "Paris"}, OutputText)
	if !strings.Contains(buf.String(), "Expected: Paris") {
		t.Errorf("incorrect verdict = %q", buf.String())
	}
}

func TestWriteStatus_Text(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteStatus(&buf, &models.Status{}, OutputText)
	if !strings.Contains(buf.String(), "No document loaded") {
		t.Errorf("empty status = %q", buf.String())
	}
	buf.Reset()
	s := &models.Status{Loaded: true, Filename: "a.pdf", DocumentID: "id", Chunks: 4, VectorIndexSize: 4, VectorIndexType: "memory", Dimensions: 384, IngestedAt: time.Now()}
	_ = WriteStatus(&buf, s, OutputText)
	if !strings.Contains(buf.String(), "memory, 4 vectors, 384 dims") {
		t.Errorf("loaded status = %q", buf.String())
	}
}

func TestJoinArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"what", "is", "this"}, "what is this"},
		{[]string{"what is this"}, "what is this"},
		{[]string{"  ", " "}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := JoinArgs(tt.args); got != tt.want {
			t.Errorf("JoinArgs(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
