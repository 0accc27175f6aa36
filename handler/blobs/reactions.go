package blobs

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"blobqueue/queue"
	"blobqueue/vote"
)

// MessageReactionAdd handles reaction additions.
func (h *Handler) MessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if isSelf(s, r.UserID) {
		return
	}
	h.handleReaction(r.MessageReaction, vote.Cast)
}

// MessageReactionRemove handles reaction removals.
func (h *Handler) MessageReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if isSelf(s, r.UserID) {
		return
	}
	h.handleReaction(r.MessageReaction, vote.Revoke)
}

func (h *Handler) handleReaction(r *discordgo.MessageReaction, act vote.Action) {
	dir, ok := h.voteDirection(r.ChannelID, r.Emoji)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	out, err := h.svc.ProcessVote(ctx, r.MessageID, r.UserID, dir, act)
	if errors.Is(err, queue.ErrNotFound) {
		return
	}
	if err != nil {
		h.logger.Error("Failed to process vote",
			zap.String("message", r.MessageID),
			zap.String("reviewer", r.UserID),
			zap.Error(err))
		return
	}
	if out.Decision != vote.NoAction {
		h.logger.Info("Vote resolved suggestion",
			zap.Int64("suggestion", out.Suggestion.Idx),
			zap.Stringer("decision", out.Decision))
	}
}

// voteDirection reports whether a reaction in channelID counts as a vote and which way.
func (h *Handler) voteDirection(channelID string, emoji discordgo.Emoji) (vote.Direction, bool) {
	if channelID != h.cfg.ReviewChannelID && channelID != h.cfg.PublicChannelID {
		return "", false
	}
	switch {
	case matchEmoji(h.cfg.ApproveEmoji, emoji):
		return vote.Approve, true
	case matchEmoji(h.cfg.DenyEmoji, emoji):
		return vote.Deny, true
	}
	return "", false
}

func isSelf(s *discordgo.Session, userID string) bool {
	return s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == userID
}
