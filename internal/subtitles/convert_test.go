package subtitles

import (
	"strings"
	"testing"
)

func TestSRTToVTTBasic(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n"
	wantPrefix := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHello\n"

	if got := string(SRTToVTT([]byte(srt))); !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("SRTToVTT = %q, want prefix %q", got, wantPrefix)
	}
}

func TestSRTToVTTMultipleCues(t *testing.T) {
	srt := strings.Join([]string{
		"1",
		"00:00:01,000 --> 00:00:02,500",
		"First line",
		"Second line",
		"",
		"2",
		"00:01:00,250 --> 00:01:03,000",
		"Next cue",
		"",
	}, "\n")

	got := string(SRTToVTT([]byte(srt)))

	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Error("output missing WEBVTT header")
	}
	if strings.Contains(got, "\n1\n") || strings.Contains(got, "\n2\n") {
		t.Error("sequence numbers survived conversion")
	}
	if !strings.Contains(got, "00:00:01.000 --> 00:00:02.500") {
		t.Error("first timestamp not rewritten")
	}
	if !strings.Contains(got, "00:01:00.250 --> 00:01:03.000") {
		t.Error("second timestamp not rewritten")
	}
	if !strings.Contains(got, "First line\nSecond line\n") {
		t.Error("multi-line cue text not preserved")
	}
}

func TestSRTToVTTCRLF(t *testing.T) {
	srt := "1\r\n00:00:01,000 --> 00:00:02,000\r\nHello\r\n\r\n"
	got := string(SRTToVTT([]byte(srt)))

	if strings.Contains(got, "\r") {
		t.Error("carriage returns survived conversion")
	}
	if !strings.Contains(got, "00:00:01.000 --> 00:00:02.000\nHello\n") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSRTToVTTNumericCueText(t *testing.T) {
	// A purely numeric line that is cue text, not a sequence number, must
	// survive: only numbers directly above a timestamp line are dropped.
	srt := strings.Join([]string{
		"1",
		"00:00:01,000 --> 00:00:02,000",
		"42",
		"",
	}, "\n")

	got := string(SRTToVTT([]byte(srt)))
	if !strings.Contains(got, "\n42\n") {
		t.Errorf("numeric cue text was dropped: %q", got)
	}
}

func TestSRTToVTTCommaInCueText(t *testing.T) {
	// Commas are only rewritten on timestamp lines.
	srt := "1\n00:00:01,000 --> 00:00:02,000\nWell, hello there\n\n"
	got := string(SRTToVTT([]byte(srt)))

	if !strings.Contains(got, "Well, hello there") {
		t.Errorf("cue text comma was rewritten: %q", got)
	}
}

func TestSRTToVTTEmptyInput(t *testing.T) {
	got := string(SRTToVTT(nil))
	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Errorf("empty input produced %q", got)
	}
}
