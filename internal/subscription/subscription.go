// Package subscription checks whether a user belongs to the channel that
// gates access to the bot.
package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/config"
)

// MemberGetter is the part of the Bot API the checker needs.
type MemberGetter interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// Checker answers "is this user subscribed to the gate channel".
type Checker struct {
	api     MemberGetter
	gate    config.GateConfig
	timeout time.Duration
	log     *slog.Logger
}

// NewChecker creates a checker for the channel in gate. timeout bounds each
// membership query; zero means no extra bound.
func NewChecker(api MemberGetter, gate config.GateConfig, timeout time.Duration, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		api:     api,
		gate:    gate,
		timeout: timeout,
		log:     log.With("component", "subscription"),
	}
}

// Enabled reports whether the gate is switched on.
func (c *Checker) Enabled() bool {
	return c.gate.Enabled
}

// JoinLink is the channel link shown to users who are not subscribed.
func (c *Checker) JoinLink() string {
	return c.gate.JoinLink()
}

// IsSubscribed reports whether userID may use the bot. A disabled gate always
// allows. Members, administrators and the owner are allowed; every other
// status, and every query failure, denies.
func (c *Checker) IsSubscribed(ctx context.Context, userID int64) bool {
	if !c.gate.Enabled {
		return true
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	member, err := c.api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: c.gate.ChatID(),
		UserID: userID,
	})
	if err != nil {
		c.log.WarnContext(ctx, "Membership check failed, denying access",
			"user_id", userID,
			"channel", c.gate.Channel,
			"error", err,
		)
		return false
	}
	if member == nil {
		c.log.WarnContext(ctx, "Membership check returned no member, denying access", "user_id", userID)
		return false
	}

	allowed := isAllowed(member.Type)
	c.log.DebugContext(ctx, "Membership checked", "user_id", userID, "status", member.Type, "allowed", allowed)
	return allowed
}

func isAllowed(t models.ChatMemberType) bool {
	switch t {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	default:
		return false
	}
}
