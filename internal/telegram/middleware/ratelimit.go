package middleware

import (
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	warningInterval = 30 * time.Second
	inactiveAfter   = time.Hour
	cleanupInterval = 10 * time.Minute
)

type userLimit struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	lastWarning time.Time
}

// RateLimiterMiddleware drops updates from users sending faster than the
// configured rate. Idle users are forgotten after an hour.
type RateLimiterMiddleware struct {
	limits *cache.Cache
	limit  rate.Limit
	burst  int
	logger *zap.Logger
	api    Sender
	now    func() time.Time
}

func NewRateLimiterMiddleware(requestsPerMinute, burst int, logger *zap.Logger, api Sender) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits: cache.New(inactiveAfter, cleanupInterval),
		limit:  rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:  burst,
		logger: logger,
		api:    api,
		now:    time.Now,
	}
}

func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next Handler) {
	userID, chatID, _ := origin(update)
	if userID == 0 {
		next(update)
		return
	}

	if !rl.allow(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allow(userID, chatID int64) bool {
	key := strconv.FormatInt(userID, 10)

	var ul *userLimit
	if v, ok := rl.limits.Get(key); ok {
		ul = v.(*userLimit)
	} else {
		ul = &userLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		if err := rl.limits.Add(key, ul, cache.DefaultExpiration); err != nil {
			v, _ := rl.limits.Get(key)
			ul = v.(*userLimit)
		}
	}
	rl.limits.SetDefault(key, ul)

	now := rl.now()
	if ul.limiter.AllowN(now, 1) {
		return true
	}

	ul.mu.Lock()
	shouldWarn := now.Sub(ul.lastWarning) > warningInterval
	if shouldWarn {
		ul.lastWarning = now
	}
	ul.mu.Unlock()

	if shouldWarn {
		rl.warn(chatID)
	}
	return false
}

func (rl *RateLimiterMiddleware) warn(chatID int64) {
	if chatID == 0 {
		return
	}
	if _, err := rl.api.Send(tgbotapi.NewMessage(chatID, render.MsgRateLimited)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
