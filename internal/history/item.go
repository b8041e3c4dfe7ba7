// Package history holds the saved outputs of every study tool as a tagged
// union and the ordered log that stores them.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/roadmap"
)

// Kind discriminates history items. The string values are the JSON "type"
// field.
type Kind string

const (
	KindSummary         Kind = "summary"
	KindDiagram         Kind = "diagram"
	KindQuiz            Kind = "quiz"
	KindLabReport       Kind = "labReport"
	KindCodeExplanation Kind = "codeExplanation"
	KindRoadmap         Kind = "roadmap"
	KindCodeFlowchart   Kind = "codeFlowchart"
	KindChat            Kind = "chat"
	KindAudioSummary    Kind = "audioSummary"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{
	KindSummary, KindDiagram, KindQuiz, KindLabReport, KindCodeExplanation,
	KindRoadmap, KindCodeFlowchart, KindChat, KindAudioSummary,
}

func (k Kind) Valid() bool {
	_, ok := decoders[k]
	return ok
}

// Label returns the human-readable name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindSummary:
		return "Summary"
	case KindDiagram:
		return "Diagram"
	case KindQuiz:
		return "Quiz"
	case KindLabReport:
		return "Lab Report"
	case KindCodeExplanation:
		return "Code Explanation"
	case KindRoadmap:
		return "Roadmap"
	case KindCodeFlowchart:
		return "Code Flowchart"
	case KindChat:
		return "Tutor Chat"
	case KindAudioSummary:
		return "Audio Summary"
	default:
		panic(fmt.Sprintf("history: unhandled kind %q", k))
	}
}

// ParseKind accepts a kind's JSON value case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown history kind %q", s)
}

// Payload is the kind-specific body of an item. The set of implementations
// is closed.
type Payload interface {
	Kind() Kind
	payload()
}

type Summary struct {
	Content       string `json:"content"`
	SourceContent string `json:"sourceContent"`
}

type Diagram struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"imageUrl"`
	Mermaid  string `json:"mermaid,omitempty"`
}

type Quiz struct {
	Result        quiz.Result `json:"result"`
	SourceContent string      `json:"sourceContent"`
}

type LabReport struct {
	Content       string `json:"content"`
	SourceCode    string `json:"sourceCode"`
	SourceResults string `json:"sourceResults"`
}

type CodeExplanation struct {
	Content    string `json:"content"`
	SourceCode string `json:"sourceCode"`
}

type Roadmap struct {
	Nodes         []roadmap.Node `json:"nodes"`
	SourceContent string         `json:"sourceContent"`
}

type CodeFlowchart struct {
	FlowchartData []flowchart.Node `json:"flowchartData"`
	SourceCode    string           `json:"sourceCode"`
}

// ChatRole is the author of a tutor chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type Chat struct {
	Messages  []ChatMessage `json:"messages"`
	ModeTitle string        `json:"modeTitle,omitempty"`
}

type AudioSummary struct {
	Content       string `json:"content"`
	SourceContent string `json:"sourceContent"`
}

func (Summary) Kind() Kind         { return KindSummary }
func (Diagram) Kind() Kind         { return KindDiagram }
func (Quiz) Kind() Kind            { return KindQuiz }
func (LabReport) Kind() Kind       { return KindLabReport }
func (CodeExplanation) Kind() Kind { return KindCodeExplanation }
func (Roadmap) Kind() Kind         { return KindRoadmap }
func (CodeFlowchart) Kind() Kind   { return KindCodeFlowchart }
func (Chat) Kind() Kind            { return KindChat }
func (AudioSummary) Kind() Kind    { return KindAudioSummary }

func (Summary) payload()         {}
func (Diagram) payload()         {}
func (Quiz) payload()            {}
func (LabReport) payload()       {}
func (CodeExplanation) payload() {}
func (Roadmap) payload()         {}
func (CodeFlowchart) payload()   {}
func (Chat) payload()            {}
func (AudioSummary) payload()    {}

var decoders = map[Kind]func([]byte) (Payload, error){
	KindSummary:         decode[Summary],
	KindDiagram:         decode[Diagram],
	KindQuiz:            decode[Quiz],
	KindLabReport:       decode[LabReport],
	KindCodeExplanation: decode[CodeExplanation],
	KindRoadmap:         decode[Roadmap],
	KindCodeFlowchart:   decode[CodeFlowchart],
	KindChat:            decode[Chat],
	KindAudioSummary:    decode[AudioSummary],
}

func decode[T Payload](data []byte) (Payload, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// TimestampLayout formats Item.Timestamp. The timestamp is for display
// only; log order is insertion order.
const TimestampLayout = time.DateTime

// Item is one saved history entry.
type Item struct {
	ID        string
	Timestamp string
	Payload   Payload
}

// New wraps p in an item with a fresh id.
func New(p Payload, now time.Time) Item {
	return Item{ID: uuid.NewString(), Timestamp: now.Format(TimestampLayout), Payload: p}
}

// Kind returns the payload's kind.
func (it Item) Kind() Kind {
	return it.Payload.Kind()
}

type header struct {
	ID        string `json:"id"`
	Type      Kind   `json:"type"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON writes the payload fields flattened next to id, type and
// timestamp.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.Payload == nil {
		return nil, fmt.Errorf("history item %q has no payload", it.ID)
	}
	head, err := json.Marshal(header{ID: it.ID, Type: it.Payload.Kind(), Timestamp: it.Timestamp})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(it.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", it.Payload.Kind(), err)
	}
	body = bytes.TrimSpace(body)
	if len(body) <= 2 {
		return head, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(head) + len(body))
	buf.Write(head[:len(head)-1])
	buf.WriteByte(',')
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	dec, ok := decoders[h.Type]
	if !ok {
		return fmt.Errorf("unknown history item type %q", h.Type)
	}
	p, err := dec(data)
	if err != nil {
		return fmt.Errorf("decode %s item: %w", h.Type, err)
	}
	*it = Item{ID: h.ID, Timestamp: h.Timestamp, Payload: p}
	return nil
}

const titleWidth = 60

// Title is a one-line preview of the item, falling back to the kind label
// when the item has no text.
func (it Item) Title() string {
	if t := it.title(); t != "" {
		return t
	}
	return it.Kind().Label()
}

func (it Item) title() string {
	switch p := it.Payload.(type) {
	case Summary:
		return preview(p.Content)
	case Diagram:
		return preview(p.Prompt)
	case Quiz:
		return fmt.Sprintf("%s quiz: %d/%d", p.Result.Mode, p.Result.Score, p.Result.Total)
	case LabReport:
		return preview(p.Content)
	case CodeExplanation:
		return preview(p.SourceCode)
	case Roadmap:
		switch len(p.Nodes) {
		case 0:
			return "Empty roadmap"
		case 1:
			return preview(p.Nodes[0].Title)
		}
		return fmt.Sprintf("%s (+%d topics)", preview(p.Nodes[0].Title), len(p.Nodes)-1)
	case CodeFlowchart:
		return preview(p.SourceCode)
	case Chat:
		if p.ModeTitle != "" {
			return p.ModeTitle
		}
		for _, m := range p.Messages {
			if m.Role == RoleUser {
				return preview(m.Content)
			}
		}
		return "Empty chat"
	case AudioSummary:
		return preview(p.Content)
	default:
		panic(fmt.Sprintf("history: unhandled payload %T", p))
	}
}

// preview returns the first non-blank line of s, shortened to titleWidth
// runes.
func preview(s string) string {
	line := ""
	for l := range strings.Lines(s) {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	r := []rune(line)
	if len(r) > titleWidth {
		return string(r[:titleWidth-1]) + "…"
	}
	return line
}
