package cli

import (
	"context"
	"flag"
	"fmt"
)

// ClearAudioCommand removes cached audio, or the whole library with -all.
type ClearAudioCommand struct {
	All          bool
	DatabasePath string
	AudioDir     string
}

func NewClearAudioCommand() *ClearAudioCommand {
	return &ClearAudioCommand{}
}

func (cmd *ClearAudioCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("clear-audio", flag.ExitOnError)

	fs.BoolVar(&cmd.All, "all", false, "Also delete downloaded surahs and offline metadata")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the offline database (default: DATABASE_PATH)")
	fs.StringVar(&cmd.AudioDir, "audio-dir", "", "Audio cache directory (default: AUDIO_CACHE_DIR)")

	fs.Usage = func() {
		usageHeader("clear-audio", "[options]", "Delete cached recitation audio. Downloaded text stays available unless -all is given.")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ClearAudioCommand) Run() error {
	app, err := openApp(cmd.DatabasePath, cmd.AudioDir)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	files, size, _ := app.Audio.Stats()

	if cmd.All {
		if err := app.Downloads.ClearAll(ctx); err != nil {
			return fmt.Errorf("failed to clear offline library: %w", err)
		}
		fmt.Printf("Offline library cleared (%d audio files, %s)\n", files, formatBytes(size))
		return nil
	}

	if err := app.Downloads.ClearOfflineAudio(ctx); err != nil {
		return fmt.Errorf("failed to clear audio: %w", err)
	}
	fmt.Printf("Removed %d audio files (%s)\n", files, formatBytes(size))
	return nil
}
