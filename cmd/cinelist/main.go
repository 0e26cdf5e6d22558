package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/catalog"
	"github.com/mmcdole/cinelist/internal/collection"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/store"
	"github.com/mmcdole/cinelist/internal/tmdb"
	"github.com/mmcdole/cinelist/internal/tui"
	"github.com/mmcdole/cinelist/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion, summaryOnly bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&summaryOnly, "summary", false, "resolve the collection, print its summary and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("cinelist %s\n", Version)
		return
	}

	if err := run(summaryOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(summaryOnly bool) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting cinelist", "version", Version)

	client := tmdb.NewClient(tmdb.Config{
		APIKey:            cfg.TMDB.APIKey,
		BaseURL:           cfg.TMDB.BaseURL,
		Language:          cfg.TMDB.Language,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
		Timeout:           cfg.TMDB.Timeout,
	}, logger)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	db, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open collection store: %w", err)
	}
	defer db.Close()

	resolver := catalog.NewCachedResolver(client, db, cfg.Cache.DetailTTL, logger)
	engine := collection.NewEngine(db, resolver, collection.Options{
		PassTimeout:    cfg.Resolve.PassTimeout,
		MaxConcurrency: cfg.Resolve.MaxConcurrency,
	}, logger)

	if summaryOnly {
		return printSummary(engine)
	}

	searchSvc := catalog.NewSearchService(client, logger)
	launcher := adapter.NewLauncher(cfg.Browser.Command, cfg.Browser.Args, logger)

	model := tui.NewModel(engine, searchSvc, launcher, resolver, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// printSummary resolves the collection once and writes the aggregates to stdout
func printSummary(engine *collection.Engine) error {
	if err := engine.Refresh(context.Background()); err != nil {
		return fmt.Errorf("failed to resolve movies: %w", err)
	}

	snap := engine.Snapshot()
	fmt.Printf("Lists:      %d\n", len(snap.Collection.Names))
	fmt.Printf("Movies:     %d\n", len(snap.Details))
	fmt.Printf("Runtime:    %s\n", domain.FormatMinutes(snap.Summary.TotalRuntime))
	fmt.Printf("Genres:     %s\n", joinOrDash(snap.Summary.Genres))
	fmt.Printf("Countries:  %s\n", joinOrDash(snap.Summary.Countries))
	fmt.Printf("Languages:  %s\n", joinOrDash(snap.Summary.Languages))

	picks := []struct {
		label string
		movie *domain.MovieDetail
	}{
		{"Most popular", snap.TopPicks.MostPopular},
		{"Longest", snap.TopPicks.MostRuntime},
		{"Biggest budget", snap.TopPicks.MostBudget},
		{"Oldest", snap.TopPicks.Oldest},
		{"Newest", snap.TopPicks.Newest},
	}
	fmt.Println()
	for _, p := range picks {
		if p.movie == nil {
			continue
		}
		line := p.movie.Title
		if year := p.movie.Stub().GetDescription(); year != "" {
			line += " (" + year + ")"
		}
		fmt.Printf("%-15s %s\n", p.label+":", line)
	}
	return nil
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// runSetupFlow asks for a TMDB API key, verifies it and saves the config
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Cinelist!")
	fmt.Println()
	fmt.Println("Movie details come from The Movie Database (TMDB).")
	fmt.Println("Create a free API key at https://www.themoviedb.org/settings/api")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		apiKey, err := promptAPIKey(reader)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if apiKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		cfg.TMDB.APIKey = apiKey
		client := tmdb.NewClient(tmdb.Config{
			APIKey:   apiKey,
			BaseURL:  cfg.TMDB.BaseURL,
			Language: cfg.TMDB.Language,
			Timeout:  cfg.TMDB.Timeout,
		}, logger)

		if err := verifyKeyWithSpinner(client); err != nil {
			fmt.Printf("✗ Could not verify the key: %v\n", err)
			if errors.Is(err, domain.ErrServerOffline) {
				return err
			}
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}
		break
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run cinelist again to start the application.")

	return nil
}

// promptAPIKey reads the key without echo when stdin is a terminal
func promptAPIKey(reader *bufio.Reader) (string, error) {
	fmt.Print("Enter your TMDB API key: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		keyBytes, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// verifyKeyWithSpinner checks the API key with a visual spinner
func verifyKeyWithSpinner(client *tmdb.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.VerifyKey(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s Verifying API key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ API key accepted")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Verifying API key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
