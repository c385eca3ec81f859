// Package main provides the demo player entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/app/focus"
	"github.com/osa030/playbox/internal/app/notification"
	"github.com/osa030/playbox/internal/app/session"
	"github.com/osa030/playbox/internal/infra/config"
	"github.com/osa030/playbox/internal/infra/logger"
	"github.com/osa030/playbox/internal/infra/renderer"
)

var (
	app        = kingpin.New("playbox", "playback session engine demo")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// tracks command
	tracksCmd = app.Command("tracks", "List catalog tracks and exit")
)

func init() {
	// play command (default)
	app.Command("play", "Run the interactive transport console (default)").Default()
}

// grantingAuthority is a focus authority that always grants. Focus-change
// events are injected manually through the console instead.
type grantingAuthority struct{}

func (grantingAuthority) RequestFocus() bool { return true }
func (grantingAuthority) AbandonFocus()      {}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg, command); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run executes the selected command. A separate function so defers run
// before exiting with an error.
func run(cfg *config.Config, command string) error {
	ctx := context.Background()

	catalog, err := session.NewCatalogFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	notifier := notification.NewManager()
	defer notifier.Close()
	notifier.Subscribe(notification.SinkFunc(func(n notification.Notice) error {
		fmt.Printf("  [%d] %s pos=%dms actions=%s\n",
			n.SequenceNo, n.Status.State, n.Status.Position, n.Status.Actions)
		return nil
	}))

	var coord *session.Coordinator
	clock := renderer.NewClock(
		func() { coord.HandleCompleted() },
		renderer.WithPollInterval(time.Duration(cfg.Playback.CompletionPollMs)*time.Millisecond),
	)
	coord = session.New(catalog, clock, grantingAuthority{}, notifier, cfg.Playback.DuckVolume)
	defer coord.Close()

	if command == tracksCmd.FullCommand() {
		return listTracks(ctx, coord)
	}
	return console(ctx, coord)
}

func listTracks(ctx context.Context, coord *session.Coordinator) error {
	tracks, err := coord.ListTracks(ctx)
	if err != nil {
		return err
	}
	for _, t := range tracks {
		fmt.Printf("%s  %s - %s (%s)\n", t.ID, t.Title, t.Artist, t.Duration)
	}
	return nil
}

// console runs the interactive transport loop.
func console(ctx context.Context, coord *session.Coordinator) error {
	fmt.Println("commands: add <track-id> | del <entry-id> | play | pause | stop | next | prev | seek <ms> | playid <track-id> | focus <gained|duck|transient|permanent> | noisy | queue | status | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := dispatch(ctx, coord, fields); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func dispatch(ctx context.Context, coord *session.Coordinator, fields []string) error {
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "add":
		if arg == "" {
			fmt.Println("usage: add <track-id>")
			return nil
		}
		entry, err := coord.Enqueue(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Printf("queued %s as %s\n", entry.Track.Title, entry.ID)
	case "del":
		if arg == "" {
			fmt.Println("usage: del <entry-id>")
			return nil
		}
		coord.Dequeue(arg)
	case "play":
		return coord.Play()
	case "pause":
		coord.Pause()
	case "stop":
		coord.Stop()
	case "next":
		return coord.SkipNext()
	case "prev":
		return coord.SkipPrevious()
	case "seek":
		ms, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Println("usage: seek <ms>")
			return nil
		}
		coord.SeekTo(ms)
	case "playid":
		if arg == "" {
			fmt.Println("usage: playid <track-id>")
			return nil
		}
		return coord.PlayFromID(ctx, arg)
	case "focus":
		change, ok := parseFocusChange(arg)
		if !ok {
			fmt.Println("usage: focus <gained|duck|transient|permanent>")
			return nil
		}
		coord.HandleFocusChange(change)
	case "noisy":
		coord.HandleNoisyOutput()
	case "queue":
		for i, e := range coord.Queue() {
			marker := " "
			if s := coord.Status(); s.Current != nil && s.Current.ID == e.ID {
				marker = "*"
			}
			fmt.Printf("%s %d. %s - %s [%s]\n", marker, i+1, e.Track.Title, e.Track.Artist, e.ID)
		}
	case "status":
		s := coord.Status()
		current := "-"
		if s.Current != nil {
			current = s.Current.Track.Title
		}
		fmt.Printf("%s pos=%dms vol=%.1f track=%s queued=%d\n",
			s.Transport.State, s.Transport.Position, s.VolumeTarget, current, s.QueueLength)
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
	return nil
}

func parseFocusChange(s string) (focus.Change, bool) {
	switch s {
	case "gained":
		return focus.ChangeGained, true
	case "duck":
		return focus.ChangeLostTransientCanDuck, true
	case "transient":
		return focus.ChangeLostTransient, true
	case "permanent":
		return focus.ChangeLostPermanent, true
	default:
		return 0, false
	}
}
