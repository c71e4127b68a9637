package subtitles

import (
	"strings"
	"testing"
)

const sampleSRT = "\ufeff1\n00:00:05,000 --> 00:00:07,500\n大家好\n欢迎来到直播间\n\n" +
	"2\n00:00:01,000 --> 00:00:03,000\n开播了\n\n" +
	"3\n00:00:09,000 --> 00:00:10,000\n好\n"

func TestReadSRT(t *testing.T) {
	got, err := ReadSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ReadSRT: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(got), got)
	}
	if got[0].Start != 1 || got[0].Text != "开播了" {
		t.Fatalf("entries not ordered by start: %+v", got)
	}
	if got[1].Start != 5 || got[1].End != 7.5 {
		t.Fatalf("second entry = %+v", got[1])
	}
	if got[1].Text != "大家好\n欢迎来到直播间" {
		t.Fatalf("multi-line text = %q", got[1].Text)
	}
}

func TestReadSRT_Empty(t *testing.T) {
	got, err := ReadSRT(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadSRT: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %+v", got)
	}
}
