package danmaku

import (
	"math"
	"strings"
	"testing"
)

const sampleASS = "\ufeff[Script Info]\r\nTitle: recorder export\r\n\r\n" +
	"[Events]\r\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n" +
	"Dialogue: 2,0:01:05.30,0:01:13.30,R2L,,20,20,2,,{\\move(1920,60,-200,60)}笑死\r\n" +
	"Dialogue: 2,0:00:10.00,0:00:18.00,R2L,,20,20,2,,{\\c&HFFFFFF&}什么, 这也行?\r\n" +
	"Dialogue: 2,0:00:00.00,0:00:08.00,R2L,,20,20,2,,开头的弹幕\r\n" +
	"Dialogue: 2,0:00:20.00,0:00:28.00,R2L,,20,20,2,,{\\pos(1,1)}\r\n" +
	"Comment: 0,0:00:30.00,0:00:31.00,R2L,,0,0,0,,不是弹幕\r\n"

func TestParseASS(t *testing.T) {
	got, err := ParseASS(strings.NewReader(sampleASS))
	if err != nil {
		t.Fatalf("ParseASS: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[0].Time != 10 || got[0].Text != "什么, 这也行?" {
		t.Fatalf("first event = %+v", got[0])
	}
	if math.Abs(got[1].Time-65.3) > 1e-9 || got[1].Text != "笑死" {
		t.Fatalf("second event = %+v", got[1])
	}
}

func TestParseASS_ControlCharacters(t *testing.T) {
	in := "Dialogue: 0,0:00:01.00,0:00:02.00,R2L,,0,0,0,,哈\x01哈\x7f哈\n"
	got, err := ParseASS(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text != "哈哈哈" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseASS_NoDialogue(t *testing.T) {
	got, err := ParseASS(strings.NewReader("[Script Info]\nTitle: empty\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}
}
