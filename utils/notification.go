package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// dmSession is the part of *discordgo.Session needed to send direct messages.
type dmSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DMNotifier sends direct messages to submitters. Repeated gateway failures open
// the breaker so a Discord outage does not stall the voting lock on DM timeouts.
type DMNotifier struct {
	session dmSession
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewDMNotifier(session dmSession, logger *zap.Logger) *DMNotifier {
	settings := gobreaker.Settings{
		Name:        "dm-notifier",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A user with closed DMs is not a gateway failure.
		IsSuccessful: func(err error) bool {
			return err == nil || isForbidden(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &DMNotifier{
		session: session,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Notify sends message to userID. ctx is only checked before sending since
// discordgo requests are not cancellable.
func (n *DMNotifier) Notify(ctx context.Context, userID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.breaker.Execute(func() (interface{}, error) {
		ch, err := n.session.UserChannelCreate(userID)
		if err != nil {
			return nil, err
		}
		_, err = n.session.ChannelMessageSend(ch.ID, message)
		return nil, err
	})
	return err
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}
