// Command linehook-echo runs a minimal LINE bot that echoes text messages
// and greets new followers. It doubles as the reference wiring for the
// linehook intake: config loading, logging, redelivery dedupe, and the
// optional debug tap.
package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RodrimaradoPT/linehook"
	"github.com/RodrimaradoPT/linehook/internal/config"
	"github.com/RodrimaradoPT/linehook/line"
	"github.com/RodrimaradoPT/linehook/seen"
	"github.com/RodrimaradoPT/linehook/tap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg.Server.Verbose)
	defer logger.Sync()

	opts := []linehook.Option{
		linehook.WithLogger(logger),
		linehook.WithSeenStore(newSeenStore(cfg, logger)),
	}

	var tapServer *http.Server
	if cfg.Tap.Addr != "" {
		broadcaster := tap.NewBroadcaster()
		broadcaster.Token = cfg.Tap.Token
		opts = append(opts, linehook.WithTap(broadcaster))

		tapServer = &http.Server{
			Addr:              cfg.Tap.Addr,
			Handler:           broadcaster,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("tap listening", zap.String("addr", cfg.Tap.Addr))
			if err := tapServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("tap server", zap.Error(err))
			}
		}()
	}

	plugin, err := linehook.New(linehook.Config{
		ChannelSecret:      cfg.Line.ChannelSecret,
		ChannelAccessToken: cfg.Line.ChannelAccessToken,
		Verbose:            cfg.Server.Verbose,
	}, opts...)
	if err != nil {
		log.Fatalf("construct plugin: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/callback", plugin.Handler(echoSession))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on signal.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if tapServer != nil {
			_ = tapServer.Shutdown(ctx)
		}
		_ = srv.Shutdown(ctx)
	}()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	logger.Info("webhook listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatalf("webhook server: %v", err)
	}
}

// echoSession registers the bot's handlers for one request and dispatches
// the batch.
func echoSession(ctx context.Context, s *linehook.Session) error {
	if s == nil {
		return nil
	}

	s.OnMessage(line.MessageText, func(ctx context.Context, ev line.Event) error {
		chunks := line.SplitText(ev.Message.Text, line.MaxTextLength)
		if len(chunks) > line.MaxMessagesPerCall {
			chunks = chunks[:line.MaxMessagesPerCall]
		}
		messages := make([]line.SendMessage, 0, len(chunks))
		for _, chunk := range chunks {
			messages = append(messages, line.NewTextMessage(chunk))
		}
		return s.Reply(ctx, ev.ReplyToken, messages...)
	})

	s.On(line.EventFollow, func(ctx context.Context, ev line.Event) error {
		return s.Reply(ctx, ev.ReplyToken, line.NewTextMessage("Thanks for following! Send me a message and I'll echo it back."))
	})

	return s.Dispatch(ctx)
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func newSeenStore(cfg *config.Config, logger *zap.Logger) seen.Store {
	if cfg.Seen.Backend == "redis" && cfg.Seen.RedisAddr != "" {
		return seen.NewRedisStore(seen.RedisConfig{
			Addr:     cfg.Seen.RedisAddr,
			Password: cfg.Seen.RedisPassword,
			DB:       cfg.Seen.RedisDB,
			TTL:      time.Duration(cfg.Seen.TTL) * time.Second,
			Logger:   logger.Named("seen"),
		})
	}

	store := seen.NewInMemory()
	go store.StartCleanup(context.Background(), time.Duration(cfg.Seen.TTL)*time.Second)
	return store
}
