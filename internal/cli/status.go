package cli

import (
	"context"
	"flag"
	"fmt"
	"time"
)

// StatusCommand summarizes the offline library.
type StatusCommand struct {
	DatabasePath string
	AudioDir     string
	Verbose      bool
}

func NewStatusCommand() *StatusCommand {
	return &StatusCommand{}
}

func (cmd *StatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the offline database (default: DATABASE_PATH)")
	fs.StringVar(&cmd.AudioDir, "audio-dir", "", "Audio cache directory (default: AUDIO_CACHE_DIR)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every downloaded surah")

	fs.Usage = func() {
		usageHeader("status", "[options]", "Show the offline library, preferences and the last sync run.")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *StatusCommand) Run() error {
	app, err := openApp(cmd.DatabasePath, cmd.AudioDir)
	if err != nil {
		return err
	}
	defer app.Close()

	prefs := app.Settings.Preferences()
	overview, err := app.Downloads.Overview(context.Background(), prefs)
	if err != nil {
		return fmt.Errorf("failed to read offline library: %w", err)
	}

	fmt.Println("Offline Library")
	fmt.Println("===============")
	fmt.Printf("Preferences: translation %s, reciter %s, tafsir %s\n", prefs.TranslationID, prefs.ReciterID, prefs.TafsirID)
	fmt.Printf("Downloaded surahs: %d\n", len(overview.Surahs))
	fmt.Printf("Cached audio: %d files, %s\n", overview.AudioFiles, formatBytes(overview.AudioBytes))

	if overview.Metadata != nil {
		fmt.Printf("Last updated: %s (translation %s, reciter %s)\n",
			overview.Metadata.LastUpdated.Local().Format(time.DateTime),
			overview.Metadata.TranslationID, overview.Metadata.ReciterID)
	}
	if overview.Stale {
		fmt.Println("The library does not match the current preferences; run 'download' to refresh it.")
	}

	if progress, err := app.Progress.GetSyncProgress(); err == nil {
		fmt.Printf("Last sync: %s, %d/%d surahs (%d failed)\n",
			progress.Status, progress.Succeeded, progress.TotalItems, progress.Failed)
		if progress.Error != "" {
			fmt.Printf("  %s\n", progress.Error)
		}
	}

	if cmd.Verbose && len(overview.Surahs) > 0 {
		fmt.Println("\n=== Surahs ===")
		for _, meta := range overview.Surahs {
			audio := ""
			if meta.HasAudio {
				audio = " [audio]"
			}
			fmt.Printf("%3d. %s (%s)%s\n", meta.Number, meta.EnglishName, meta.TranslationID, audio)
		}
	}
	return nil
}
