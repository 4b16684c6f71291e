// Package telegramtest records what the bot sends instead of calling Telegram.
package telegramtest

import (
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is an in-memory stand-in for the Bot API.
type API struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failSends int
	updates   chan tgbotapi.Update
	stopped   bool
}

func NewAPI() *API {
	return &API{updates: make(chan tgbotapi.Update, 16)}
}

// FailNextSends makes the next n Send calls return an error.
func (a *API) FailNextSends(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failSends = n
}

func (a *API) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failSends > 0 {
		a.failSends--
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	a.sent = append(a.sent, c)
	return tgbotapi.Message{MessageID: len(a.sent)}, nil
}

func (a *API) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (a *API) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return a.updates
}

func (a *API) StopReceivingUpdates() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.stopped {
		a.stopped = true
		close(a.updates)
	}
}

// Push delivers an update to the bot's polling loop.
func (a *API) Push(u tgbotapi.Update) {
	a.updates <- u
}

// Messages returns every text message sent so far.
func (a *API) Messages() []tgbotapi.MessageConfig {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []tgbotapi.MessageConfig
	for _, c := range a.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

// Texts returns the text of every message sent so far.
func (a *API) Texts() []string {
	msgs := a.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// Last returns the most recent text message.
func (a *API) Last() tgbotapi.MessageConfig {
	msgs := a.Messages()
	if len(msgs) == 0 {
		return tgbotapi.MessageConfig{}
	}
	return msgs[len(msgs)-1]
}

func (a *API) Documents() []tgbotapi.DocumentConfig {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []tgbotapi.DocumentConfig
	for _, c := range a.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

// CallbackAnswers returns the text of every answered callback query.
func (a *API) CallbackAnswers() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []string
	for _, c := range a.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

// Buttons flattens the inline keyboard of m into its callback data.
func Buttons(m tgbotapi.MessageConfig) []string {
	markup, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}

	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}
