package inbox

import (
	"context"
	"log"

	"github.com/Zachkp/folio/internal/contact"
)

// Recorder archives every message, then hands it to Next. A failing archive
// never blocks delivery.
type Recorder struct {
	Store *Store
	Next  contact.Sender
}

func (r *Recorder) Send(ctx context.Context, msg contact.Message) error {
	id, err := r.Store.Save(ctx, msg)
	if err != nil {
		log.Printf("inbox: archiving message from %s: %v", msg.Email, err)
	}

	sendErr := r.Next.Send(ctx, msg)

	if id != "" {
		// record the outcome even if the send context expired
		if err := r.Store.MarkDelivered(context.WithoutCancel(ctx), id, sendErr); err != nil {
			log.Printf("inbox: %v", err)
		}
	}
	return sendErr
}
