package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderwave/passport-radio/internal/config"
	"github.com/wanderwave/passport-radio/internal/profile"
	"github.com/wanderwave/passport-radio/internal/progression"
	"github.com/wanderwave/passport-radio/internal/session"
)

var BUILD_VERSION = "dev"

var configFile = flag.String("config", "", "use a custom config file instead of ~/.passport-radio/config.yaml")
var userFlag = flag.String("user", "", "act as this user id instead of the local guest profile")
var listenFlag = flag.Int("listen", 0, "simulate listening to the given station slug for N minutes")
var stationFlag = flag.String("station", "", "station to tune for -listen, as 'id,name,ISO,Country'")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	levelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barFill     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	unlockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of passport:")
		flag.PrintDefaults()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("-------- new passport session --------", zap.Any("args", os.Args))

	userID := *userFlag
	if userID == "" {
		userID, err = guestID(filepath.Dir(cfg.Database.Path))
		if err != nil {
			logger.Error("resolving guest id", zap.Error(err))
			os.Exit(1)
		}
	}

	store, err := profile.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Error("opening profile store", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	engine := progression.NewEngine(userID, store, store, logger,
		progression.WithFlushPolicy(cfg.Sync.Window.Std(), cfg.Sync.Threshold))

	ctx := context.Background()
	if err := engine.Load(ctx); err != nil {
		logger.Error("loading profile", zap.Error(err))
		os.Exit(1)
	}

	if *listenFlag > 0 {
		if err := simulateListening(ctx, cfg, engine, store, logger, userID, *listenFlag); err != nil {
			logger.Error("listening session failed", zap.Error(err))
			os.Exit(1)
		}
	}

	renderDashboard(ctx, engine, store, userID)
}

func loadConfig() (config.Config, error) {
	path := *configFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".passport-radio", "config.yaml")
	}
	return config.Load(path)
}

func initializeLogger(cfg config.Config) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, err
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		cfg.Log.File,
	}
	return loggerConfig.Build()
}

// guestID returns the stable anonymous user id for this machine, minting
// one on first run.
func guestID(dir string) (string, error) {
	path := filepath.Join(dir, "guest_id")

	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading guest id: %w", err)
	}

	id := "guest-" + uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("persisting guest id: %w", err)
	}
	return id, nil
}

func simulateListening(
	ctx context.Context,
	cfg config.Config,
	engine *progression.Engine,
	store *profile.Store,
	logger *zap.Logger,
	userID string,
	minutes int,
) error {
	st := session.Station{ID: "demo-fip", Name: "FIP", CountryCode: "FR", Country: "France"}
	if *stationFlag != "" {
		parts := strings.SplitN(*stationFlag, ",", 4)
		if len(parts) != 4 {
			return fmt.Errorf("invalid -station %q, want 'id,name,ISO,Country'", *stationFlag)
		}
		st = session.Station{ID: parts[0], Name: parts[1], CountryCode: parts[2], Country: parts[3]}
	}

	listener := session.NewListener(userID, engine, store, logger,
		session.WithTickInterval(cfg.Player.TickInterval.Std()))
	listener.Tune(ctx, st)

	fmt.Printf("Tuned to %s (%s), listening for %dm...\n", st.Name, st.Country, minutes)
	time.Sleep(time.Duration(minutes) * 60 * cfg.Player.TickInterval.Std())

	listener.Stop(ctx)
	return nil
}

func renderDashboard(ctx context.Context, engine *progression.Engine, store *profile.Store, userID string) {
	stats := engine.Stats()
	level := engine.Level()
	xp := engine.XP()
	next := engine.NextLevelXP()

	fmt.Println(titleStyle.Render("Passport Radio") + dimStyle.Render("  "+userID))
	fmt.Println()

	inLevel := xp - (next - progression.XPPerLevel)
	fmt.Printf("%s  %s XP\n",
		levelStyle.Render(fmt.Sprintf("Level %d", level)),
		humanize.Comma(int64(xp)))
	fmt.Printf("%s %s\n\n",
		renderBar(float64(inLevel)/float64(progression.XPPerLevel)*100),
		dimStyle.Render(fmt.Sprintf("%s / %s to next level",
			humanize.Comma(int64(inLevel)), humanize.Comma(int64(progression.XPPerLevel)))))

	fmt.Printf("Listening time: %s minutes   Countries: %d   Stations: %d   Trivia wins: %d\n\n",
		humanize.Comma(int64(stats.TotalMinutes)),
		len(stats.UniqueCountries), len(stats.UniqueStations), stats.TriviaWins)

	if unlock := engine.RecentUnlock(); unlock != nil {
		fmt.Println(unlockStyle.Render("★ " + unlock.Message))
		fmt.Println()
		engine.ClearRecentUnlock()
	}

	earned := engine.EarnedBadges()
	if len(earned) > 0 {
		labels := make([]string, 0, len(earned))
		for _, id := range earned {
			labels = append(labels, progression.BadgeDetails(id).Label)
		}
		fmt.Println(badgeStyle.Render("Badges: " + strings.Join(labels, " · ")))
		fmt.Println()
	}

	if quest := progression.ActiveQuest(earned); quest != nil {
		status := progression.QuestProgress(*quest, stats, nil)
		line := fmt.Sprintf("Quest: %s  %s", quest.Title, renderBar(status.Percent))
		if status.Remaining != "" {
			line += "  " + dimStyle.Render(status.Remaining)
		}
		fmt.Println(line)
	}

	if paragon := progression.ParagonProgress(stats, nil); paragon.Active {
		fmt.Printf("Paragon tier %d  %s  %s\n",
			paragon.Tier, renderBar(paragon.Percent),
			dimStyle.Render(fmt.Sprintf("%d / %d min", paragon.MinutesInTier, progression.ParagonStep)))
	}
	fmt.Println()

	renderTravelLog(ctx, store, userID)
	renderLeaderboard(ctx, store)
}

func renderTravelLog(ctx context.Context, store *profile.Store, userID string) {
	entries, err := store.TravelTotals(ctx, userID)
	if err != nil || len(entries) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Country", "Time Listened")
	for _, e := range entries {
		t.Row(e.Country, formatSeconds(e.Seconds))
	}
	fmt.Println(titleStyle.Render("Travel Log"))
	fmt.Println(t.String())
}

func renderLeaderboard(ctx context.Context, store *profile.Store) {
	top, err := store.TopByXP(ctx, 10)
	if err != nil || len(top) < 2 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Listener", "Level", "XP")
	for i, rec := range top {
		t.Row(fmt.Sprintf("%d", i+1), rec.UserID,
			fmt.Sprintf("%d", progression.LevelForXP(rec.XP)),
			humanize.Comma(int64(rec.XP)))
	}
	fmt.Println(titleStyle.Render("Top Listeners"))
	fmt.Println(t.String())
}

func renderBar(percent float64) string {
	const width = 20
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * width)
	return barFill.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

func formatSeconds(s int) string {
	h := s / 3600
	m := (s % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s%60)
	}
	return fmt.Sprintf("%ds", s)
}
