package progression

// BadgeKind is the closed set of conditions a badge can be gated on. Each
// catalog entry pairs a kind with a threshold instead of carrying an opaque
// predicate, which keeps the catalog plain data.
type BadgeKind int

const (
	KindTotalMinutes BadgeKind = iota
	KindUniqueCountries
	KindUniqueStations
	KindTriviaWins
	KindNight
	KindMorning
	KindWeekend
)

// BadgeType groups badges into the families the UI renders separately.
type BadgeType string

const (
	TypeScoutRank BadgeType = "scout_rank"
	TypeExplorer  BadgeType = "explorer"
	TypeTrivia    BadgeType = "trivia"
	TypeStation   BadgeType = "station"
	TypeSpecial   BadgeType = "special"
	TypeParagon   BadgeType = "paragon"
)

// Definition defines a single badge.
type Definition struct {
	ID          string
	Label       string
	Description string
	XPReward    int
	Type        BadgeType
	Kind        BadgeKind
	Threshold   int
}

// Met reports whether the badge's condition holds for the given stats and
// context. Context-gated badges (night, morning, weekend) ignore Stats
// entirely; they unlock the first time an event lands inside the window.
func (d Definition) Met(stats Stats, ctx Context) bool {
	switch d.Kind {
	case KindTotalMinutes:
		return stats.TotalMinutes >= d.Threshold
	case KindUniqueCountries:
		return len(stats.UniqueCountries) >= d.Threshold
	case KindUniqueStations:
		return len(stats.UniqueStations) >= d.Threshold
	case KindTriviaWins:
		return stats.TriviaWins >= d.Threshold
	case KindNight:
		return ctx.Night()
	case KindMorning:
		return ctx.Morning()
	case KindWeekend:
		return ctx.Weekend()
	default:
		return false
	}
}

// Catalog contains all static badge definitions. Paragon badges are not
// listed here; they are computed on demand (see paragon.go).
var Catalog = []Definition{
	// ====== SCOUTING RANKS (listening time) ======
	{ID: "scout_rank_1", Label: "Signal Rookie", Description: "Listen for 5 minutes total", XPReward: 100, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 5},
	{ID: "scout_rank_2", Label: "Frequency Finder", Description: "Listen for 30 minutes total", XPReward: 250, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 30},
	{ID: "scout_rank_3", Label: "Broadcast Hunter", Description: "Listen for 1 hour total", XPReward: 500, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 60},
	{ID: "scout_rank_4", Label: "Wave Master", Description: "Listen for 5 hours total", XPReward: 1000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 300},
	{ID: "scout_rank_5", Label: "Radio Legend", Description: "Listen for 24 hours total", XPReward: 5000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 1440},
	{ID: "scout_rank_6", Label: "Airwave Ace", Description: "Listen for 50 hours total", XPReward: 2000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 3000},
	{ID: "scout_rank_7", Label: "Static Breaker", Description: "Listen for 100 hours total", XPReward: 3000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 6000},
	{ID: "scout_rank_8", Label: "Ether Voyager", Description: "Listen for 250 hours total", XPReward: 5000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 15000},
	{ID: "scout_rank_9", Label: "Signal Sovereign", Description: "Listen for 500 hours total", XPReward: 8000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 30000},
	{ID: "scout_rank_10", Label: "Radio Titan", Description: "Listen for 1,000 hours total", XPReward: 10000, Type: TypeScoutRank, Kind: KindTotalMinutes, Threshold: 60000},

	// ====== EXPLORATION (countries visited) ======
	{ID: "explorer_novice", Label: "Tourist", Description: "Visit 5 different countries", XPReward: 150, Type: TypeExplorer, Kind: KindUniqueCountries, Threshold: 5},
	{ID: "explorer_pro", Label: "Nomad", Description: "Visit 20 different countries", XPReward: 600, Type: TypeExplorer, Kind: KindUniqueCountries, Threshold: 20},
	{ID: "explorer_elite", Label: "Ambassador", Description: "Visit 50 different countries", XPReward: 1500, Type: TypeExplorer, Kind: KindUniqueCountries, Threshold: 50},

	// ====== TRIVIA (skill & knowledge) ======
	{ID: "trivia_novice", Label: "Smarty", Description: "Win 5 Trivia rounds", XPReward: 200, Type: TypeTrivia, Kind: KindTriviaWins, Threshold: 5},
	{ID: "trivia_expert", Label: "Geographer", Description: "Win 25 Trivia rounds", XPReward: 500, Type: TypeTrivia, Kind: KindTriviaWins, Threshold: 25},
	{ID: "trivia_master", Label: "Cartographer", Description: "Win 50 Trivia rounds", XPReward: 1200, Type: TypeTrivia, Kind: KindTriviaWins, Threshold: 50},

	// ====== STATION HOPPING (variety) ======
	{ID: "surfer", Label: "Channel Surfer", Description: "Visit 50 unique stations", XPReward: 300, Type: TypeStation, Kind: KindUniqueStations, Threshold: 50},
	{ID: "dj", Label: "Disc Jockey", Description: "Visit 100 unique stations", XPReward: 800, Type: TypeStation, Kind: KindUniqueStations, Threshold: 100},

	// ====== SPECIAL (time & context) ======
	{ID: "night_owl", Label: "Night Owl", Description: "Tune in between 1 AM and 4 AM", XPReward: 150, Type: TypeSpecial, Kind: KindNight},
	{ID: "early_bird", Label: "Early Bird", Description: "Tune in between 5 AM and 8 AM", XPReward: 150, Type: TypeSpecial, Kind: KindMorning},
	{ID: "weekend_warrior", Label: "Weekend Warrior", Description: "Tune in on a Saturday or Sunday", XPReward: 100, Type: TypeSpecial, Kind: KindWeekend},
}

// BadgeByID returns the catalog definition for id, or nil if the id is not
// a static catalog entry.
func BadgeByID(id string) *Definition {
	for _, d := range Catalog {
		if d.ID == id {
			return &d
		}
	}
	return nil
}

// BadgesByType returns all catalog badges of one family.
func BadgesByType(t BadgeType) []Definition {
	var result []Definition
	for _, d := range Catalog {
		if d.Type == t {
			result = append(result, d)
		}
	}
	return result
}
