package services

import (
	"context"
	"log"
	"sync"
	"time"

	"rezzmoAPI/internal/types/notification"

	"rezzmoAPI/middleware"
)

// Notifier delivers one push intent. NotificationService is the real
// implementation; tests substitute a recorder.
type Notifier interface {
	Notify(ctx context.Context, intent *notification.PushIntent) error
}

// NotificationDispatcher decouples the streak evaluator from delivery:
// intents go into a buffered queue and a small worker pool drains it.
// A slow or failing Notifier can never stall an evaluation pass; when
// the queue is full the intent is dropped with a log line.
type NotificationDispatcher struct {
	notifier Notifier
	workers  int
	jobQueue chan *notification.PushIntent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewNotificationDispatcher(notifier Notifier) *NotificationDispatcher {
	d := &NotificationDispatcher{
		notifier: notifier,
		workers:  5,
		jobQueue: make(chan *notification.PushIntent, 256),
		stopChan: make(chan struct{}),
	}

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue hands an intent to the pool without blocking. Reports whether
// the intent was accepted.
func (d *NotificationDispatcher) Enqueue(intent *notification.PushIntent) bool {
	select {
	case d.jobQueue <- intent:
		return true
	default:
		log.Printf("Notification queue full, dropping %s for user %s", intent.Type, intent.UserID)
		return false
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case intent := <-d.jobQueue:
			d.process(intent)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) process(intent *notification.PushIntent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.notifier.Notify(ctx, intent); err != nil {
		// Dispatch failures are never retried here; the audit row and the
		// next scheduled tick are the recovery path.
		log.Printf("Notification dispatch failed for user %s: %v", intent.UserID, err)
		return
	}
	middleware.StreakRemindersSent.Inc()
}

// Stop drains nothing further and waits for in-flight jobs to finish.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		d.wg.Wait()
		log.Println("Notification dispatcher stopped")
	})
}
