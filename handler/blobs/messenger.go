package blobs

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"blobqueue/model"
	"blobqueue/queue"
)

// Messenger posts queue messages through a Discord session.
type Messenger struct {
	session Session
	cfg     model.Queue
	logger  *zap.Logger
}

func NewMessenger(session Session, cfg model.Queue, logger *zap.Logger) *Messenger {
	return &Messenger{session: session, cfg: cfg, logger: logger.Named("messenger")}
}

func (m *Messenger) PostReview(ctx context.Context, s *model.Submission) (string, error) {
	return m.postSuggestion(ctx, m.cfg.ReviewChannelID, s)
}

func (m *Messenger) PostPublic(ctx context.Context, s *model.Submission) (string, error) {
	return m.postSuggestion(ctx, m.cfg.PublicChannelID, s)
}

func (m *Messenger) postSuggestion(ctx context.Context, channelID string, s *model.Submission) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	msg, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: s.Mention(),
		Embeds:  []*discordgo.MessageEmbed{SuggestionEmbed(s)},
	})
	if err != nil {
		return "", fmt.Errorf("send suggestion #%d: %w", s.Idx, err)
	}
	m.react(channelID, msg.ID, reactionName(m.cfg.ApproveEmoji), reactionName(m.cfg.DenyEmoji))
	return msg.ID, nil
}

func (m *Messenger) PostComparison(ctx context.Context, c *model.Comparison) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	msg, err := m.session.ChannelMessageSend(m.cfg.PublicChannelID, c.Render(m.cfg.VerboseCompare))
	if err != nil {
		return "", fmt.Errorf("send comparison: %w", err)
	}
	m.react(m.cfg.PublicChannelID, msg.ID, c.Keycaps()...)
	return msg.ID, nil
}

// Refresh edits the review or public message so its embed shows the current note and score.
func (m *Messenger) Refresh(ctx context.Context, s *model.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	channelID, messageID := m.cfg.ReviewChannelID, s.ReviewMessageID
	if s.State == model.StatePublic {
		channelID, messageID = m.cfg.PublicChannelID, s.PublicMessageID
	}
	if messageID == "" {
		return nil
	}
	edit := discordgo.NewMessageEdit(channelID, messageID).SetEmbed(SuggestionEmbed(s))
	if _, err := m.session.ChannelMessageEditComplex(edit); err != nil {
		return fmt.Errorf("edit suggestion #%d: %w", s.Idx, err)
	}
	return nil
}

func (m *Messenger) Changelog(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.session.ChannelMessageSend(m.cfg.ChangelogChannelID, text)
	return err
}

func (m *Messenger) Delete(ctx context.Context, ch queue.Channel, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.session.ChannelMessageDelete(m.channelID(ch), messageID)
}

// Log posts an operational notice to the bot log channel.
func (m *Messenger) Log(text string) {
	if m.cfg.LogChannelID == "" {
		return
	}
	if _, err := m.session.ChannelMessageSend(m.cfg.LogChannelID, text); err != nil {
		m.logger.Warn("Failed to write to log channel", zap.Error(err))
	}
}

func (m *Messenger) channelID(ch queue.Channel) string {
	switch ch {
	case queue.ReviewChannel:
		return m.cfg.ReviewChannelID
	case queue.PublicChannel:
		return m.cfg.PublicChannelID
	default:
		return m.cfg.SuggestionsChannelID
	}
}

// react adds reactions in order. A missing reaction is not worth losing the message over.
func (m *Messenger) react(channelID, messageID string, emojis ...string) {
	for _, e := range emojis {
		if err := m.session.MessageReactionAdd(channelID, messageID, e); err != nil {
			m.logger.Warn("Failed to add reaction",
				zap.String("message", messageID),
				zap.String("emoji", e),
				zap.Error(err))
		}
	}
}
