package push

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/npezzotti/go-bulletin/internal/config"
	"github.com/npezzotti/go-bulletin/internal/database"
	"github.com/npezzotti/go-bulletin/internal/stats"
	"github.com/npezzotti/go-bulletin/internal/types"
)

const defaultTTL = 30

type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Dispatcher sends a web-push notification to every stored subscription when
// an announcement is created. Failed deliveries prune the subscription.
type Dispatcher struct {
	log   *log.Logger
	db    database.BulletinRepository
	stats stats.StatsProvider
	opts  *webpush.Options

	send func(message []byte, sub *webpush.Subscription, opts *webpush.Options) error
}

func NewDispatcher(logger *log.Logger, db database.BulletinRepository, sp stats.StatsProvider, cfg *config.Config) *Dispatcher {
	if sp != nil {
		sp.RegisterMetric(stats.NotificationsSent)
		sp.RegisterMetric(stats.SubscriptionsPruned)
	}

	return &Dispatcher{
		log:   logger,
		db:    db,
		stats: sp,
		opts: &webpush.Options{
			Subscriber:      cfg.VAPIDSubscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             defaultTTL,
		},
		send: sendNotification,
	}
}

// Enabled reports whether VAPID keys are configured. Dispatch is a no-op
// without them.
func (d *Dispatcher) Enabled() bool {
	return d.opts.VAPIDPublicKey != "" && d.opts.VAPIDPrivateKey != ""
}

// AnnouncementCreated delivers the notification to every subscription
// concurrently. Errors are logged and swallowed; the announcement write has
// already succeeded and must not be affected.
func (d *Dispatcher) AnnouncementCreated(a types.Announcement) {
	if !d.Enabled() {
		return
	}

	subs, err := d.db.ListPushSubscriptions()
	if err != nil {
		d.log.Println("list push subscriptions:", err)
		return
	}

	payload, err := json.Marshal(notificationPayload{
		Title: "New announcement",
		Body:  a.Title,
		URL:   "/announcements/" + a.ExternalId,
	})
	if err != nil {
		d.log.Println("serialize notification payload:", err)
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub database.PushSubscription) {
			defer wg.Done()

			err := d.send(payload, &webpush.Subscription{
				Endpoint: sub.Endpoint,
				Keys: webpush.Keys{
					P256dh: sub.P256dh,
					Auth:   sub.Auth,
				},
			}, d.opts)
			if err != nil {
				d.log.Printf("push delivery to subscription %d failed: %v", sub.Id, err)
				// expired or invalid subscription, prune it
				if err := d.db.DeletePushSubscription(sub.Id); err != nil {
					d.log.Printf("prune subscription %d: %v", sub.Id, err)
					return
				}
				if d.stats != nil {
					d.stats.Incr(stats.SubscriptionsPruned)
				}
				return
			}

			if d.stats != nil {
				d.stats.Incr(stats.NotificationsSent)
			}
		}(sub)
	}

	wg.Wait()
}

func sendNotification(message []byte, sub *webpush.Subscription, opts *webpush.Options) error {
	resp, err := webpush.SendNotification(message, sub, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
