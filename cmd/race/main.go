package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/marbles/internal/app"
	"github.com/tomz197/marbles/internal/config"
	"github.com/tomz197/marbles/internal/console"
	"github.com/tomz197/marbles/internal/race"
)

func main() {
	var (
		buy   string
		bets  string
		shop  bool
		watch bool
	)
	flag.StringVar(&buy, "buy", "", "comma separated marble ids to buy before the race")
	flag.StringVar(&bets, "bet", "", "comma separated stakes, e.g. Bouncy=20,BigBoy=5")
	flag.BoolVar(&shop, "shop", false, "list the shop and exit")
	flag.BoolVar(&watch, "watch", true, "draw the live standings board when stdout is a terminal")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger("marbles")

	cfg := app.ConfigFromEnv()
	cfg.RoundPause = -1
	r, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up race", "err", err)
	}

	if shop {
		printShop(r)
		return
	}

	if buy != "" {
		for _, id := range splitList(buy) {
			if err := r.Session.Purchase(id); err != nil {
				logger.Error("purchase failed", "err", err)
			}
		}
		// Pick up the new marbles before the first tick.
		r.NextRound()
	}
	for marble, amount := range parseBets(bets, logger) {
		if err := r.Session.Bet(marble, amount); err != nil {
			logger.Error("bet refused", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go r.Run(ctx)

	var winner race.Event
	var won bool
	if watch && console.IsTerminal(os.Stdout) && term.IsTerminal(int(os.Stdin.Fd())) {
		winner, won = watchRace(ctx, r)
	} else {
		select {
		case winner = <-r.Winners():
			won = true
		case <-ctx.Done():
		}
	}
	stop()

	if err := r.Stop(); err != nil {
		logger.Error("failed to save progress", "err", err)
	}

	board := console.Board{TrackLength: r.Track.Length, Width: 80}
	for _, line := range board.Lines(r.Server.GetSnapshot(), nil) {
		fmt.Println(line)
	}
	if won {
		fmt.Printf("\n%s wins. Gold: %d\n", winner.Name, r.Session.Inventory().Gold())
	}
}

// watchRace draws the live board in raw mode until the race is won or the
// user quits.
func watchRace(ctx context.Context, r *app.Race) (race.Event, bool) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		event race.Event
		won   bool
	}
	done := make(chan result, 1)
	go func() {
		var res result
		select {
		case res.event = <-r.Winners():
			res.won = true
			// Leave the final standings up for a moment.
			time.Sleep(2 * time.Second)
		case <-viewCtx.Done():
		}
		cancel()
		done <- res
	}()

	v := console.NewViewer(r.Server, bufio.NewReader(os.Stdin), os.Stdout, console.ViewerOptions{
		Name:        "local",
		TrackLength: r.Track.Length,
	})
	if err := v.Run(viewCtx); err != nil {
		log.Error("viewer stopped", "err", err)
	}
	cancel()
	res := <-done
	console.ClearScreen(os.Stdout)
	return res.event, res.won
}

func printShop(r *app.Race) {
	fmt.Printf("Gold: %d\n", r.Session.Inventory().Gold())
	items := r.Session.Shop()
	if len(items) == 0 {
		fmt.Println("The shop is empty.")
		return
	}
	for _, it := range items {
		owned := ""
		if r.Session.Inventory().Owns(it.ID) {
			owned = " (owned)"
		}
		fmt.Printf("  %-12s %-14s %5d gold%s\n", it.ID, it.Name, it.Price, owned)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBets(s string, logger *log.Logger) map[string]int {
	bets := make(map[string]int)
	for _, part := range splitList(s) {
		marble, amount, ok := strings.Cut(part, "=")
		n, err := strconv.Atoi(strings.TrimSpace(amount))
		if !ok || err != nil {
			logger.Warn("ignoring malformed bet", "bet", part)
			continue
		}
		bets[strings.TrimSpace(marble)] += n
	}
	return bets
}
