package quiz

import (
	"encoding/json"
	"testing"
)

func TestAnswerJSON(t *testing.T) {
	tests := []struct {
		in   Answer
		want string
	}{
		{Unset(), `null`},
		{Text("Paris"), `"Paris"`},
		{Bool(false), `false`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.in, err)
		}
		if string(b) != tt.want {
			t.Errorf("marshal = %s, want %s", b, tt.want)
		}
		var back Answer
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != tt.in {
			t.Errorf("round trip %s = %#v, want %#v", b, back, tt.in)
		}
	}
}

func TestAnswerSliceKeepsUnsetSlots(t *testing.T) {
	var answers []Answer
	if err := json.Unmarshal([]byte(`["a", null, true]`), &answers); err != nil {
		t.Fatal(err)
	}
	if len(answers) != 3 || answers[1].IsSet() {
		t.Fatalf("unexpected answers: %#v", answers)
	}
}

func TestConfidenceJSON(t *testing.T) {
	var levels []Confidence
	if err := json.Unmarshal([]byte(`[3, null, 1]`), &levels); err != nil {
		t.Fatal(err)
	}
	if levels[0] != ConfidenceHigh || levels[1] != ConfidenceUnset || levels[2] != ConfidenceLow {
		t.Fatalf("unexpected levels: %v", levels)
	}
	var c Confidence
	if err := json.Unmarshal([]byte(`7`), &c); err == nil {
		t.Fatal("expected out-of-range confidence to be rejected")
	}
	b, _ := json.Marshal([]Confidence{ConfidenceUnset, ConfidenceMedium})
	if string(b) != `[null,2]` {
		t.Fatalf("marshal = %s", b)
	}
}

func TestParseQuestionType(t *testing.T) {
	for in, want := range map[string]QuestionType{
		"mcq":            MultipleChoice,
		"TrueFalse":      TrueFalse,
		"fill":           FillInTheBlank,
		"OPENENDED":      OpenEnded,
		"fillintheblank": FillInTheBlank,
	} {
		got, err := ParseQuestionType(in)
		if err != nil || got != want {
			t.Errorf("ParseQuestionType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseQuestionType("essay"); err == nil {
		t.Error("expected error for unknown type")
	}
}
