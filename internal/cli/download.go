package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/quransync/internal/quranapi"
)

// DownloadCommand downloads surahs for offline reading.
type DownloadCommand struct {
	Surahs        string
	TranslationID string
	ReciterID     string
	TafsirID      string
	IncludeAudio  bool
	IncludeTafsir bool
	DatabasePath  string
	AudioDir      string

	numbers []int
}

func NewDownloadCommand() *DownloadCommand {
	return &DownloadCommand{}
}

func (cmd *DownloadCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	fs.StringVar(&cmd.Surahs, "surahs", "", "Surahs to download, e.g. \"1,18,36-38\" (default: all)")
	fs.StringVar(&cmd.TranslationID, "translation", "", "Translation edition (default: stored preference)")
	fs.StringVar(&cmd.ReciterID, "reciter", "", "Reciter edition (default: stored preference)")
	fs.StringVar(&cmd.TafsirID, "tafsir", "", "Tafsir edition (default: stored preference)")
	fs.BoolVar(&cmd.IncludeAudio, "audio", false, "Also cache recitation audio")
	fs.BoolVar(&cmd.IncludeTafsir, "with-tafsir", false, "Also store tafsir for every ayah")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the offline database (default: DATABASE_PATH)")
	fs.StringVar(&cmd.AudioDir, "audio-dir", "", "Audio cache directory (default: AUDIO_CACHE_DIR)")

	fs.Usage = func() {
		usageHeader("download", "[options]", "Download surahs for offline reading. Press Ctrl+C to cancel; completed surahs are kept.")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s download -surahs 1,36,67 -audio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s download -translation fa.makarem -with-tafsir -tafsir fa.tafsir-nemooneh\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	numbers, err := ParseSurahList(cmd.Surahs)
	if err != nil {
		return err
	}
	cmd.numbers = numbers
	return nil
}

func (cmd *DownloadCommand) Run() error {
	app, err := openApp(cmd.DatabasePath, cmd.AudioDir)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req, err := app.SyncRequest(ctx, cmd.numbers, cmd.TranslationID, cmd.ReciterID, cmd.TafsirID, cmd.IncludeAudio, cmd.IncludeTafsir)
	if err != nil {
		return err
	}

	fmt.Println("Offline Download")
	fmt.Println("================")
	fmt.Printf("Surahs: %d\n", len(req.Surahs))
	fmt.Printf("Translation: %s, reciter: %s\n", req.TranslationID, req.ReciterID)
	if req.IncludeTafsir {
		fmt.Printf("Tafsir: %s\n", req.TafsirID)
	}
	fmt.Println()

	result, err := app.Downloads.Sync(ctx, req, func(percent int, label string) {
		fmt.Printf("[%3d%%] %s\n", percent, label)
	})
	if errors.Is(err, quranapi.ErrCancelled) {
		fmt.Println("\nDownload cancelled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Println("\n=== Download Summary ===")
	fmt.Printf("Completed: %d/%d\n", len(result.Completed), result.Requested)
	if len(result.Failed) > 0 {
		fmt.Printf("Failed surahs: %v\n", result.Failed)
	}
	return nil
}
