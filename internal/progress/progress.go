// Package progress folds quiz outcomes into per-topic scores, daily
// streaks, badges and study time.
package progress

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"
)

// DefaultTopic is used for questions without a topic.
const DefaultTopic = "General"

// WeakThreshold is the accuracy below which a topic counts as weak.
const WeakThreshold = 0.6

// Badge identifiers.
const (
	BadgeFirstQuiz   = "first_quiz"
	BadgeStreak3     = "streak_3"
	BadgeTopicMaster = "topic_master"
)

// Badges lists every badge in award order.
var Badges = []string{BadgeFirstQuiz, BadgeStreak3, BadgeTopicMaster}

// BadgeTitle returns a display name for a badge.
func BadgeTitle(id string) string {
	switch id {
	case BadgeFirstQuiz:
		return "First Quiz"
	case BadgeStreak3:
		return "3-Day Streak"
	case BadgeTopicMaster:
		return "Topic Master"
	default:
		return id
	}
}

// BadgeDescription explains how a badge is earned.
func BadgeDescription(id string) string {
	switch id {
	case BadgeFirstQuiz:
		return "Completed your first quiz."
	case BadgeStreak3:
		return "Studied three days in a row."
	case BadgeTopicMaster:
		return "Answered 10+ questions on one topic with 90% accuracy."
	default:
		return ""
	}
}

// Score counts answers for one topic.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns correct/total, or 0 for an empty score.
func (s Score) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Streaks tracks consecutive study days. LastActive is a YYYY-MM-DD key.
type Streaks struct {
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastActive string `json:"lastActive,omitempty"`
}

// Data is the stored progress aggregate.
type Data struct {
	ScoresByTopic map[string]Score `json:"scoresByTopic"`
	Streaks       Streaks          `json:"streaks"`
	Badges        []string         `json:"badges"`
	StudyTime     map[string]int64 `json:"studyTime"`
}

// Outcome is the graded result of one question.
type Outcome struct {
	Topic   string
	Correct bool
}

// New returns empty progress.
func New() Data {
	return Data{
		ScoresByTopic: map[string]Score{},
		Badges:        []string{},
		StudyTime:     map[string]int64{},
	}
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	c := d
	c.ScoresByTopic = maps.Clone(d.ScoresByTopic)
	c.StudyTime = maps.Clone(d.StudyTime)
	c.Badges = slices.Clone(d.Badges)
	c.normalize()
	return c
}

func (d *Data) normalize() {
	if d.ScoresByTopic == nil {
		d.ScoresByTopic = map[string]Score{}
	}
	if d.StudyTime == nil {
		d.StudyTime = map[string]int64{}
	}
	if d.Badges == nil {
		d.Badges = []string{}
	}
}

// DateKey formats t as a local calendar date key.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Record folds a completed quiz into the aggregate and returns the badges
// newly awarded by it. Badges are never revoked.
func (d *Data) Record(outcomes []Outcome, now time.Time) []string {
	d.normalize()

	for _, o := range outcomes {
		topic := strings.TrimSpace(o.Topic)
		if topic == "" {
			topic = DefaultTopic
		}
		s := d.ScoresByTopic[topic]
		s.Total++
		if o.Correct {
			s.Correct++
		}
		d.ScoresByTopic[topic] = s
	}

	d.touchStreak(now)

	var awarded []string
	award := func(id string, ok bool) {
		if ok && !d.HasBadge(id) {
			d.Badges = append(d.Badges, id)
			awarded = append(awarded, id)
		}
	}
	award(BadgeFirstQuiz, true)
	award(BadgeStreak3, d.Streaks.Current >= 3)
	award(BadgeTopicMaster, d.hasMasteredTopic())
	return awarded
}

// touchStreak counts now's date as an active day: the same day leaves the
// streak alone, the next day extends it, and any gap restarts it at 1.
func (d *Data) touchStreak(now time.Time) {
	today := DateKey(now)
	switch {
	case d.Streaks.LastActive == today:
		if d.Streaks.Current == 0 {
			d.Streaks.Current = 1
		}
	case daysBetween(d.Streaks.LastActive, now) == 1:
		d.Streaks.Current++
	default:
		d.Streaks.Current = 1
	}
	d.Streaks.LastActive = today
	d.Streaks.Longest = max(d.Streaks.Longest, d.Streaks.Current)
}

// daysBetween returns the number of calendar days from the date key last
// to now, or -1 when last is empty or unparseable.
func daysBetween(last string, now time.Time) int {
	if last == "" {
		return -1
	}
	t, err := time.ParseInLocation(time.DateOnly, last, now.Location())
	if err != nil {
		return -1
	}
	y, m, dd := now.Date()
	a := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func (d Data) hasMasteredTopic() bool {
	for _, s := range d.ScoresByTopic {
		if s.Total >= 10 && s.Accuracy() >= 0.9 {
			return true
		}
	}
	return false
}

// HasBadge reports whether id has been awarded.
func (d Data) HasBadge(id string) bool {
	return slices.Contains(d.Badges, id)
}

// AddStudyTime adds dur to now's date bucket. Non-positive durations are
// ignored.
func (d *Data) AddStudyTime(now time.Time, dur time.Duration) {
	if dur <= 0 {
		return
	}
	d.normalize()
	d.StudyTime[DateKey(now)] += int64(dur / time.Second)
}

// TotalStudyTime sums every date bucket.
func (d Data) TotalStudyTime() time.Duration {
	var secs int64
	for _, s := range d.StudyTime {
		secs += s
	}
	return time.Duration(secs) * time.Second
}

// WeakTopics returns topics with accuracy below threshold, weakest first.
func (d Data) WeakTopics(threshold float64) []string {
	var weak []string
	for topic, s := range d.ScoresByTopic {
		if s.Total > 0 && s.Accuracy() < threshold {
			weak = append(weak, topic)
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		ai, aj := d.ScoresByTopic[weak[i]].Accuracy(), d.ScoresByTopic[weak[j]].Accuracy()
		if ai != aj {
			return ai < aj
		}
		return weak[i] < weak[j]
	})
	return weak
}

// Topics returns every topic name sorted alphabetically.
func (d Data) Topics() []string {
	return slices.Sorted(maps.Keys(d.ScoresByTopic))
}

// Summary renders a one-line overview.
func (d Data) Summary() string {
	var correct, total int
	for _, s := range d.ScoresByTopic {
		correct += s.Correct
		total += s.Total
	}
	return fmt.Sprintf("%d/%d correct across %d topics, streak %d (best %d), %d badges",
		correct, total, len(d.ScoresByTopic), d.Streaks.Current, d.Streaks.Longest, len(d.Badges))
}
