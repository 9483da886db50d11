package progression

import (
	"fmt"

	"github.com/samber/lo"
)

// QuestMetric names the counter a quest tracks.
type QuestMetric string

const (
	MetricMinutes   QuestMetric = "minutes"
	MetricCountries QuestMetric = "countries"
	MetricStations  QuestMetric = "stations"
)

// Quest is a read-only projection over the badge catalog: it points at a
// badge and adds the presentation metadata the dashboard needs. Completing
// a quest is nothing more than that badge unlocking; quests hold no state
// of their own.
type Quest struct {
	BadgeID string
	Title   string
	Metric  QuestMetric
	Target  int
}

// Quests in suggested play order. Each entry must reference a catalog badge.
var Quests = []Quest{
	{BadgeID: "scout_rank_1", Title: "Signal Rookie", Metric: MetricMinutes, Target: 5},
	{BadgeID: "explorer_novice", Title: "Globetrotter", Metric: MetricCountries, Target: 5},
	{BadgeID: "scout_rank_2", Title: "Frequency Finder", Metric: MetricMinutes, Target: 30},
	{BadgeID: "scout_rank_3", Title: "Broadcast Hunter", Metric: MetricMinutes, Target: 60},
	{BadgeID: "surfer", Title: "Channel Surfer", Metric: MetricStations, Target: 50},
}

// ActiveQuest returns the first quest whose badge has not been earned yet,
// or nil when the whole table is complete.
func ActiveQuest(earned []string) *Quest {
	for i := range Quests {
		if !lo.Contains(earned, Quests[i].BadgeID) {
			return &Quests[i]
		}
	}
	return nil
}

// rangeStart returns the target of the previous quest tracking the same
// metric, so tiered quests render progress within their own band instead
// of from zero.
func rangeStart(q Quest) int {
	start := 0
	for _, other := range Quests {
		if other.BadgeID == q.BadgeID {
			break
		}
		if other.Metric == q.Metric && other.Target > start && other.Target <= q.Target {
			start = other.Target
		}
	}
	return start
}

// Stopwatch smooths minute-granularity progress into a per-second display.
// Confirmed minutes come from the engine; the offset counts seconds observed
// locally since the confirmed value last changed. The offset is cosmetic and
// never feeds back into the engine.
type Stopwatch struct {
	confirmed     int
	offsetSeconds int
}

// Observe reconciles the stopwatch with the engine's confirmed minute count.
// Any change resets the local offset.
func (s *Stopwatch) Observe(confirmedMinutes int) {
	if confirmedMinutes != s.confirmed {
		s.confirmed = confirmedMinutes
		s.offsetSeconds = 0
	}
}

// Tick advances the local offset by one second of listening.
func (s *Stopwatch) Tick() {
	s.offsetSeconds++
}

// OffsetSeconds returns the seconds accumulated since the last confirmed
// minute.
func (s *Stopwatch) OffsetSeconds() int {
	return s.offsetSeconds
}

// QuestStatus is a render-ready snapshot of progress toward a quest.
type QuestStatus struct {
	Quest     Quest
	Current   int // metric value, in the quest's native unit
	Percent   float64
	Remaining string // e.g. "8m 59s left", empty once complete
}

// QuestProgress projects the current stats onto a quest. For minute quests
// the stopwatch offset is blended in so the bar moves every second.
func QuestProgress(q Quest, stats Stats, sw *Stopwatch) QuestStatus {
	start := rangeStart(q)

	var progress, total float64
	var current int

	switch q.Metric {
	case MetricMinutes:
		offset := 0
		if sw != nil {
			offset = sw.OffsetSeconds()
		}
		current = stats.TotalMinutes
		progress = float64(stats.TotalMinutes*60+offset) - float64(start*60)
		total = float64((q.Target - start) * 60)
	case MetricCountries:
		current = len(stats.UniqueCountries)
		progress = float64(current - start)
		total = float64(q.Target - start)
	case MetricStations:
		current = len(stats.UniqueStations)
		progress = float64(current - start)
		total = float64(q.Target - start)
	}

	st := QuestStatus{Quest: q, Current: current, Percent: clampPercent(progress, total)}

	if q.Metric == MetricMinutes && st.Percent < 100 {
		remaining := int(total - progress)
		if remaining < 0 {
			remaining = 0
		}
		st.Remaining = fmt.Sprintf("%dm %ds left", remaining/60, remaining%60)
	} else if st.Percent < 100 && total > progress {
		st.Remaining = fmt.Sprintf("%d to go", int(total-progress))
	}

	return st
}

// ParagonStatus describes progress through the current Paragon tier.
type ParagonStatus struct {
	Active        bool
	Tier          int
	MinutesInTier int
	Percent       float64
	Remaining     string // time until the next tier, e.g. "23h 59m left"
}

// ParagonProgress projects total minutes onto the Paragon ladder. Before
// the ladder activates it reports progress toward the activation point so
// the widget can show how close the listener is.
func ParagonProgress(stats Stats, sw *Stopwatch) ParagonStatus {
	offset := 0
	if sw != nil {
		offset = sw.OffsetSeconds()
	}

	if stats.TotalMinutes < ParagonCap {
		progress := float64(stats.TotalMinutes*60 + offset)
		return ParagonStatus{
			Percent: clampPercent(progress, float64(ParagonCap*60)),
		}
	}

	past := stats.TotalMinutes - ParagonCap
	inTier := past % ParagonStep
	progress := inTier*60 + offset

	st := ParagonStatus{
		Active:        true,
		Tier:          past/ParagonStep + 1,
		MinutesInTier: inTier,
		Percent:       clampPercent(float64(progress), float64(ParagonStep*60)),
	}
	if remaining := ParagonStep*60 - progress; remaining > 0 {
		st.Remaining = fmt.Sprintf("%dh %dm left", remaining/3600, remaining%3600/60)
	}
	return st
}

func clampPercent(progress, total float64) float64 {
	if total <= 0 {
		return 100
	}
	p := progress / total * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
