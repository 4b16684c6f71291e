package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/keyboard"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
)

// Telegram's typing indicator expires after 5s.
const typingActionInterval = 4 * time.Second

type follower struct {
	ws   *workspace.Workspace
	stop func()
}

// ProgressTracker relays results pipeline progress into a chat while the
// user's workspace shows the results view.
type ProgressTracker struct {
	sender   *MessageSender
	keyboard *keyboard.Builder

	mu        sync.Mutex
	followers map[string]*follower
}

func NewProgressTracker(sender *MessageSender, kb *keyboard.Builder) *ProgressTracker {
	return &ProgressTracker{
		sender:    sender,
		keyboard:  kb,
		followers: make(map[string]*follower),
	}
}

// Follow starts relaying ws updates to chatID. It is a no-op when ws is
// already followed.
func (p *ProgressTracker) Follow(ctx context.Context, chatID int64, ws *workspace.Workspace) {
	userID := ws.Identity().UserID

	p.mu.Lock()
	if f, ok := p.followers[userID]; ok {
		if f.ws == ws {
			p.mu.Unlock()
			return
		}
		f.stop()
	}

	updates, unsubscribe := ws.Subscribe()
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &follower{ws: ws, stop: func() {
		cancel()
		unsubscribe()
	}}
	p.followers[userID] = f
	p.mu.Unlock()

	go p.relay(fctx, chatID, userID, f, updates)
}

// Stop ends relaying for userID.
func (p *ProgressTracker) Stop(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.followers[userID]; ok {
		f.stop()
		delete(p.followers, userID)
	}
}

// Len reports the number of chats being followed.
func (p *ProgressTracker) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.followers)
}

// StopAll ends every relay.
func (p *ProgressTracker) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for userID, f := range p.followers {
		f.stop()
		delete(p.followers, userID)
	}
}

func (p *ProgressTracker) release(userID string, f *follower) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f.stop()
	if p.followers[userID] == f {
		delete(p.followers, userID)
	}
}

func (p *ProgressTracker) relay(ctx context.Context, chatID int64, userID string, f *follower, updates <-chan entity.Update) {
	defer p.release(userID, f)

	typing := time.NewTicker(typingActionInterval)
	defer typing.Stop()

	running := true
	p.sender.Typing(chatID)

	for {
		select {
		case <-ctx.Done():
			return

		case <-typing.C:
			if running {
				p.sender.Typing(chatID)
			}

		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Kind == entity.UpdateView && u.View != entity.ViewResults {
				return
			}
			if u.Kind != entity.UpdateStage || u.Stage == nil {
				continue
			}

			switch u.Stage.Type {
			case entity.StageEventStarted:
				running = true
				_ = p.sender.Send(ctx, chatID, render.Stage(u.Stage), nil)
			case entity.StageEventCompleted:
				_ = p.sender.Send(ctx, chatID, render.Stage(u.Stage), nil)
			case entity.StageEventFinished, entity.StageEventFailed:
				running = false
				state := f.ws.State()
				text := render.Stage(u.Stage) + "\n\n" + render.State(state)
				_ = p.sender.SendCritical(ctx, chatID, text, p.keyboard.ForState(state))
			}
		}
	}
}
