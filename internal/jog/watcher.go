package jog

import (
	"context"
	"sync"

	"jogapp-api/internal/events"

	"go.uber.org/zap"
)

// ChangeWatcher bridges repository change notifications onto the event bus
// so the service layer can recompute statuses reactively.
type ChangeWatcher struct {
	repository JogRepository
	eventBus   events.EventBus
	logger     *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewChangeWatcher creates a new ChangeWatcher
func NewChangeWatcher(repository JogRepository, eventBus events.EventBus, logger *zap.Logger) *ChangeWatcher {
	return &ChangeWatcher{
		repository: repository,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start begins forwarding repository changes. It returns an error if the
// underlying change subscription cannot be opened.
func (w *ChangeWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	changes, err := w.repository.Watch(watchCtx)
	if err != nil {
		cancel()
		return err
	}

	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.forward(changes)

	w.logger.Info("Jog change watcher started")
	return nil
}

// Stop terminates the watcher and waits for the forwarding loop to drain
func (w *ChangeWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.running = false
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("Jog change watcher stopped")
}

func (w *ChangeWatcher) forward(changes <-chan JogChange) {
	defer close(w.done)

	for change := range changes {
		w.eventBus.Publish(events.TopicJogChanged, events.JogChanged{
			Event:  events.NewEvent(),
			JogID:  string(change.JogID),
			UserID: string(change.UserID),
		})
	}
}
