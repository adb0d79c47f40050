package cmd

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/content"
	"github.com/Zachkp/folio/internal/inbox"
)

func TestNewSender(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SendDelay = 10 * time.Millisecond
	assert.Equal(t, contact.SimulatedSender{Delay: 10 * time.Millisecond}, newSender(cfg))

	cfg.SendMode = config.SendSMTP
	cfg.SMTPHost = "smtp.example.com"
	_, ok := newSender(cfg).(*contact.SMTPSender)
	assert.True(t, ok)
}

func TestBuildDepsArchives(t *testing.T) {
	site, err := content.Load()
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.InboxPath = filepath.Join(t.TempDir(), "inbox.db")
	deps, archive := buildDeps(cfg, site)
	require.NotNil(t, archive)
	defer archive.Close()

	rec, ok := deps.Sender.(*inbox.Recorder)
	require.True(t, ok)
	assert.Same(t, archive, rec.Store)
	assert.Equal(t, site.Catalog, deps.Catalog)
	assert.Equal(t, cfg.ResetAfter, deps.ResetAfter)

	cfg.InboxPath = ""
	deps, archive = buildDeps(cfg, site)
	assert.Nil(t, archive)
	_, ok = deps.Sender.(contact.SimulatedSender)
	assert.True(t, ok)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "init", "--config", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil); cfgFile = "folio.yml" })

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().InboxPath, cfg.InboxPath)
}

func TestRunServerDrainsRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusNoContent)
	})}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	returned := make(chan error, 1)
	go func() { returned <- runServer(ctx, srv, ln, 5*time.Second) }()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-started
	cancel()
	select {
	case <-returned:
		t.Fatal("returned while a request was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, http.StatusNoContent, <-status)
	select {
	case err := <-returned:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("did not return after the request drained")
	}
}

func TestRunServerReportsServeErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = runServer(context.Background(), &http.Server{Handler: http.NotFoundHandler()}, ln, time.Second)
	assert.Error(t, err)
}
