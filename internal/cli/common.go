package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/entrypoint"
)

// openApp loads the configuration with the database path and audio
// directory overridden by flags when they are set.
func openApp(dbPath, audioDir string) (*entrypoint.App, error) {
	cfg := config.NewConfig()
	if dbPath != "" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Database.Path = abs
	}
	if audioDir != "" {
		cfg.AudioCache.Dir = audioDir
	}
	return entrypoint.NewApp(cfg)
}

// ParseSurahList parses "1,2,5-7" into surah numbers. An empty string
// selects nothing, which callers treat as every surah.
func ParseSurahList(raw string) ([]int, error) {
	var numbers []int
	seen := make(map[int]bool)
	add := func(n int) error {
		if n < 1 || n > entities.TotalSurahs {
			return fmt.Errorf("surah number %d out of range 1-%d", n, entities.TotalSurahs)
		}
		if !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
		return nil
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			lo, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil || hi < lo {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			for n := lo; n <= hi; n++ {
				if err := add(n); err != nil {
					return nil, err
				}
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid surah number %q", part)
		}
		if err := add(n); err != nil {
			return nil, err
		}
	}
	return numbers, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func usageHeader(name, args, description string) {
	fmt.Fprintf(os.Stderr, "Usage: %s %s %s\n\n", os.Args[0], name, args)
	fmt.Fprintf(os.Stderr, "%s\n\n", description)
	fmt.Fprintf(os.Stderr, "Options:\n")
}
