// Command checkout is the terminal booking wizard. It resumes a checkout interrupted by a
// sign-in, or mounts the one named by a location such as
//
//	checkout "/checkout/room?hotelId=h1&roomId=r7&date=2026-11-02&nights=2&guests=2"
//	checkout /checkout/tour/bromo-sunrise
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"travelcheckout/internal/checkout"
	"travelcheckout/internal/client"
	intconfig "travelcheckout/internal/config"
	"travelcheckout/internal/resume"
	bus "travelcheckout/internal/signal"
	"travelcheckout/internal/utils"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	tabFlag := flag.String("tab", "", "tab id; resume tickets are scoped to it")
	verbose := flag.Bool("v", false, "log checkout events to stderr")
	logout := flag.Bool("logout", false, "forget the stored sign-in and exit")
	flag.Parse()

	env, err := intconfig.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *verbose {
		if l, err := utils.InitLogger(true); err == nil {
			defer func() { _ = l.Sync() }()
		}
	}

	tab := strings.TrimSpace(*tabFlag)
	if tab == "" {
		tab = strings.TrimSpace(env.TabID)
	}
	if tab == "" {
		tab = "default"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickets, tokens, closeStores, err := openStores(env, tab)
	if err != nil {
		fmt.Fprintln(os.Stderr, "storage:", err)
		os.Exit(1)
	}
	defer closeStores()

	api := client.New(env.APIBaseURL, env.HTTPTimeout, tokens, tab)
	if *logout {
		if err := api.Logout(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "logout:", err)
			os.Exit(1)
		}
		fmt.Println("signed out")
		return
	}

	signals := bus.NewLocalBus()
	if env.SignalRelay {
		go func() {
			if err := bus.Bridge(ctx, api.EventsURL(), signals); err != nil {
				utils.Logger().Warn("signal relay unavailable", zap.Error(err))
			}
		}()
	}

	nav := &terminalNavigator{out: os.Stdout}
	recovery := &checkout.Recovery{Tickets: tickets, Identity: api, Navigator: nav, Signals: signals}

	location := flag.Arg(0)
	if path, ok, err := recovery.Run(ctx); err != nil {
		utils.Logger().Warn("resume failed", zap.Error(err))
	} else if ok {
		location = path
	}
	if location == "" {
		fmt.Println("nothing to resume; pass a checkout location")
		return
	}
	go func() { _ = recovery.Watch(ctx) }()

	w := &wizard{
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
		deps: checkout.Deps{
			Reference: api,
			Identity:  api,
			Bookings:  api,
			Gateway:   api,
			Tickets:   tickets,
			Signals:   signals,
			Navigator: nav,
			NewID:     uuid.NewString,
		},
		account:    api,
		nav:        nav,
		bus:        signals,
		tab:        tab,
		currency:   env.Currency,
		voucherDir: env.VoucherDir,
	}
	w.deps.Surface = checkout.AuthSurfaceFunc(w.signIn)

	if err := w.run(ctx, location); err != nil {
		fmt.Fprintln(os.Stderr, "checkout:", err)
		os.Exit(1)
	}
}

// openStores picks where resume tickets live. The token always lives in badger unless
// everything is kept in memory.
func openStores(env intconfig.Env, tab string) (resume.Store, client.TokenStore, func(), error) {
	if strings.EqualFold(env.ResumeStore, "memory") {
		return resume.NewMemoryStore(tab), &client.MemoryTokens{}, func() {}, nil
	}

	db, err := badger.Open(badger.DefaultOptions(env.BadgerDir).WithLogger(nil))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s: %w", env.BadgerDir, err)
	}
	tokens := client.BadgerTokens{DB: db}

	if strings.EqualFold(env.ResumeStore, "redis") {
		rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
		closeAll := func() {
			_ = rdb.Close()
			_ = db.Close()
		}
		return resume.NewRedisStore(rdb, tab), tokens, closeAll, nil
	}
	return resume.NewBadgerStore(db, tab), tokens, func() { _ = db.Close() }, nil
}
