package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/imageloader"
	"github.com/Zachkp/folio/internal/inbox"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/web"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}
		gin.SetMode(cfg.GinMode)

		site, err := loadSite(cfg)
		if err != nil {
			return err
		}
		deps, archive := buildDeps(cfg, site)
		if archive != nil {
			defer archive.Close()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if archive != nil && cfg.InboxRetention > 0 {
			go pruneLoop(ctx, archive, cfg.InboxRetention)
		}

		sessions := session.NewStore(deps, cfg.SessionTTL, cfg.MaxSessions)
		defer sessions.Close()
		go sessions.Run(ctx, cfg.JanitorInterval)

		images := imageloader.New(nil, imageloader.Config{
			Timeout:      cfg.ImageTimeout,
			AllowedHosts: cfg.ImageHosts,
		})
		var hasher *inbox.Hasher
		if archive != nil {
			hasher = inbox.NewHasher(cfg.HashSalt)
		}

		srv, err := web.New(web.Options{
			Site:       site,
			Sessions:   sessions,
			Images:     images,
			Hasher:     hasher,
			SessionTTL: cfg.SessionTTL,
		})
		if err != nil {
			return fmt.Errorf("building server: %w", err)
		}

		httpSrv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ln, err := net.Listen("tcp", httpSrv.Addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", httpSrv.Addr, err)
		}
		log.Printf("folio %s listening on %s (send mode %s)", Version, httpSrv.Addr, cfg.SendMode)
		return runServer(ctx, httpSrv, ln, shutdownGrace)
	},
}

const shutdownGrace = 5 * time.Second

// runServer serves on ln until ctx ends, then gives in-flight requests up to
// grace to finish. It returns only once they have drained or grace expired.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Println("folio: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("folio: shutdown: %v", err)
		}
	}()

	err := srv.Serve(ln)
	cancel()
	<-drained
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pruneLoop drops archived messages older than retention once a day.
func pruneLoop(ctx context.Context, archive *inbox.Store, retention time.Duration) {
	prune := func() {
		n, err := archive.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			log.Printf("folio: pruning inbox: %v", err)
			return
		}
		if n > 0 {
			log.Printf("folio: pruned %d old messages", n)
		}
	}
	prune()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
