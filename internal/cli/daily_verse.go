package cli

import (
	"context"
	"flag"
	"fmt"
	"time"
)

// DailyVerseCommand prints today's verse.
type DailyVerseCommand struct {
	TranslationID string
	ReciterID     string
	DatabasePath  string
	Timeout       time.Duration
}

func NewDailyVerseCommand() *DailyVerseCommand {
	return &DailyVerseCommand{}
}

func (cmd *DailyVerseCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("daily-verse", flag.ExitOnError)

	fs.StringVar(&cmd.TranslationID, "translation", "", "Translation edition (default: stored preference)")
	fs.StringVar(&cmd.ReciterID, "reciter", "", "Reciter edition (default: stored preference)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the offline database (default: DATABASE_PATH)")
	fs.DurationVar(&cmd.Timeout, "timeout", time.Minute, "Give up after this long")

	fs.Usage = func() {
		usageHeader("daily-verse", "[options]", "Print the verse of the day. A verse fetched earlier today is served from the local cache.")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *DailyVerseCommand) Run() error {
	app, err := openApp(cmd.DatabasePath, "")
	if err != nil {
		return err
	}
	defer app.Close()

	prefs := app.Settings.Preferences()
	if cmd.TranslationID == "" {
		cmd.TranslationID = prefs.TranslationID
	}
	if cmd.ReciterID == "" {
		cmd.ReciterID = prefs.ReciterID
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	verse, err := app.DailyVerse.Today(ctx, cmd.TranslationID, cmd.ReciterID)
	if err != nil {
		return fmt.Errorf("failed to get daily verse: %w", err)
	}

	fmt.Printf("%s (%d:%d) - %s\n\n", verse.Surah.EnglishName, verse.Surah.Number, verse.NumberInSurah, verse.Date)
	fmt.Println(verse.Text)
	fmt.Println()
	fmt.Println(verse.Translation)
	if verse.Audio != "" {
		fmt.Printf("\nAudio: %s\n", verse.Audio)
	}
	return nil
}
