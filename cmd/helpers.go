package cmd

import (
	"fmt"
	"log"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/content"
	"github.com/Zachkp/folio/internal/inbox"
	"github.com/Zachkp/folio/internal/session"
)

func loadSite(cfg *config.Config) (*content.Site, error) {
	if cfg.ContentFile == "" {
		return content.Load()
	}
	site, err := content.LoadFile(cfg.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return site, nil
}

func newSender(cfg *config.Config) contact.Sender {
	if cfg.SendMode == config.SendSMTP {
		return contact.NewSMTPSender(contact.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			To:   cfg.ToEmail,
		})
	}
	return contact.SimulatedSender{Delay: cfg.SendDelay}
}

// buildDeps wires the shared session collaborators. When the inbox can be
// opened every submission is archived before delivery; the returned store
// is nil otherwise and the caller closes it when non-nil.
func buildDeps(cfg *config.Config, site *content.Site) (session.Deps, *inbox.Store) {
	sender := newSender(cfg)
	var archive *inbox.Store
	if cfg.InboxPath != "" {
		s, err := inbox.Open(cfg.InboxPath)
		if err != nil {
			log.Printf("folio: inbox disabled: %v", err)
		} else {
			archive = s
			sender = &inbox.Recorder{Store: s, Next: sender}
		}
	}
	return session.Deps{
		Catalog:     site.Catalog,
		Sender:      sender,
		ResetAfter:  cfg.ResetAfter,
		SendTimeout: cfg.SendTimeout,
	}, archive
}
