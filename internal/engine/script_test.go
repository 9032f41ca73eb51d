package engine

import (
	"strings"
	"testing"
)

func TestProcessScript(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		wantInstructions string
		wantClean        string
	}{
		{
			name:             "single instruction",
			text:             "Be brief. **Always mention the giveaway.** Thanks everyone.",
			wantInstructions: "Always mention the giveaway.",
			wantClean:        "Be brief.  Thanks everyone.",
		},
		{
			name:             "no spans",
			text:             "Just a plain script about sourdough.",
			wantInstructions: "",
			wantClean:        "Just a plain script about sourdough.",
		},
		{
			name:             "multiple spans keep order",
			text:             "**First.** Intro. **Second.** Outro. **Third.**",
			wantInstructions: "First.\nSecond.\nThird.",
			wantClean:        " Intro.  Outro. ",
		},
		{
			name:             "span across lines",
			text:             "Line one\n**Answer in Spanish\nwhen asked.**\nLine two",
			wantInstructions: "Answer in Spanish\nwhen asked.",
			wantClean:        "Line one\n\nLine two",
		},
		{
			name:             "inner whitespace trimmed",
			text:             "a ** pin the link ** b",
			wantInstructions: "pin the link",
			wantClean:        "a  b",
		},
		{
			name:             "unclosed marker left alone",
			text:             "Watch **this space",
			wantInstructions: "",
			wantClean:        "Watch **this space",
		},
		{
			name:             "empty input",
			text:             "",
			wantInstructions: "",
			wantClean:        "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotInstr, gotClean := ProcessScript(tt.text)
			if gotInstr != tt.wantInstructions {
				t.Errorf("instructions = %q, want %q", gotInstr, tt.wantInstructions)
			}
			if gotClean != tt.wantClean {
				t.Errorf("clean = %q, want %q", gotClean, tt.wantClean)
			}
		})
	}
}

func TestProcessScript_SpanCount(t *testing.T) {
	scripts := []string{
		"**a** **b** **c**",
		"intro **one** middle **two** end",
		"**only**",
	}
	for _, s := range scripts {
		want := strings.Count(s, "**") / 2
		instr, clean := ProcessScript(s)
		if got := len(strings.Split(instr, "\n")); got != want {
			t.Errorf("ProcessScript(%q): %d instructions, want %d", s, got, want)
		}
		if strings.Contains(clean, "**") {
			t.Errorf("ProcessScript(%q): clean %q still has markers", s, clean)
		}
	}
}
