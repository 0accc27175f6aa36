package blobs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"blobqueue/model"
	"blobqueue/queue"
)

// MessageCreate handles new messages in the suggestions channel.
func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || isSelf(s, m.Author.ID) || m.ChannelID != h.cfg.SuggestionsChannelID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	h.intake(ctx, m.Message)
}

// MessageUpdate picks up note edits on the original suggestion message.
func (h *Handler) MessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Message == nil || m.ChannelID != h.cfg.SuggestionsChannelID || m.Content == "" {
		return
	}
	note := ParseNote(m.Content)
	if note == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if _, err := h.svc.UpdateNote(ctx, m.ID, note); err != nil && !errors.Is(err, queue.ErrNotFound) {
		h.logger.Error("Failed to update note", zap.String("message", m.ID), zap.Error(err))
	}
}

func (h *Handler) intake(ctx context.Context, msg *discordgo.Message) {
	log := h.logger.With(zap.String("author", msg.Author.ID), zap.String("message", msg.ID))

	in, err := ParseIntake(msg.Content, msg.Attachments, h.cfg.MaxAssetBytes)
	var rej *rejection
	if errors.As(err, &rej) {
		h.reject(ctx, log, msg, rej)
		return
	}

	data, err := h.assets.Download(ctx, in.Attachment.URL)
	if errors.Is(err, errTooLarge) {
		h.reject(ctx, log, msg, &rejection{reason: err.Error(), reply: tooLargeMsg})
		return
	}
	if err != nil {
		h.broken(ctx, log, msg, err)
		return
	}

	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		log.Warn("Failed to read the image header", zap.Error(err))
	} else {
		width, height = cfg.Width, cfg.Height
	}

	ref, err := h.assets.Upload(ctx, in.Name, data, in.Animated)
	if err != nil {
		h.broken(ctx, log, msg, err)
		return
	}

	sub, err := h.svc.Submit(ctx, &model.Submission{
		SubmitterID:     msg.Author.ID,
		Asset:           ref,
		Name:            in.Name,
		Note:            in.Note,
		SubmittedAt:     msg.Timestamp,
		SourceMessageID: msg.ID,
	})
	if err != nil {
		if derr := h.assets.Discard(ctx, ref); derr != nil {
			log.Warn("Failed to discard emoji after a failed submission", zap.Error(derr))
		}
		h.broken(ctx, log, msg, err)
		return
	}

	h.logSubmission(log, sub, msg, in, data, width, height)
	if err := h.session.MessageReactionAdd(msg.ChannelID, msg.ID, "👀"); err != nil {
		log.Warn("Failed to acknowledge suggestion", zap.Error(err))
	}
	h.reply(ctx, log, msg, fmt.Sprintf(receivedMsg, sub.Mention(), sub.Idx))
}

// logSubmission keeps the original file and its hash in the suggestions log for moderation history.
func (h *Handler) logSubmission(log *zap.Logger, sub *model.Submission, msg *discordgo.Message, in *Intake, data []byte, width, height int) {
	if h.cfg.SuggestionsLogChannelID == "" {
		return
	}
	sum := sha256.Sum256(data)
	note := in.Note
	if note == "" {
		note = "None"
	}
	content := fmt.Sprintf("**Submission %d** - `%s` <@%s>\n\n**Name:** %s\n**Note:** %s\n**File:** `%s`, height: %d, width: %d\n**Hash:** `%s`",
		sub.Idx, msg.Author.String(), msg.Author.ID, sub.Name, note, in.Attachment.Filename, height, width, hex.EncodeToString(sum[:]))

	_, err := h.session.ChannelMessageSendComplex(h.cfg.SuggestionsLogChannelID, &discordgo.MessageSend{
		Content: content,
		Files: []*discordgo.File{{
			Name:        in.Attachment.Filename,
			ContentType: in.Attachment.ContentType,
			Reader:      bytes.NewReader(data),
		}},
	})
	if err != nil {
		log.Warn("Failed to write suggestions log", zap.Int64("suggestion", sub.Idx), zap.Error(err))
	}
}

func (h *Handler) reject(ctx context.Context, log *zap.Logger, msg *discordgo.Message, rej *rejection) {
	log.Info("Suggestion rejected", zap.String("reason", rej.reason))
	h.deleteSource(log, msg)
	h.reply(ctx, log, msg, rej.reply)
}

// broken handles failures that are not the submitter's fault.
func (h *Handler) broken(ctx context.Context, log *zap.Logger, msg *discordgo.Message, err error) {
	log.Error("Failed to process suggestion", zap.Error(err))
	h.deleteSource(log, msg)
	h.messenger.Log(fmt.Sprintf("⚠️ I couldn't process a suggestion by <@%s>: `%v`", msg.Author.ID, err))
	h.reply(ctx, log, msg, botBrokenMsg)
}

func (h *Handler) deleteSource(log *zap.Logger, msg *discordgo.Message) {
	if err := h.session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		log.Warn("Failed to delete suggestion message", zap.Error(err))
	}
}

// reply DMs the author of msg. When that fails the text goes to the channel of msg
// as a mention that removes itself after replyTTL.
func (h *Handler) reply(ctx context.Context, log *zap.Logger, msg *discordgo.Message, text string) {
	err := h.notifier.Notify(ctx, msg.Author.ID, text)
	if err == nil {
		return
	}
	log.Debug("Failed to DM submitter, replying in channel", zap.Error(err))

	sent, err := h.session.ChannelMessageSend(msg.ChannelID, fmt.Sprintf("<@%s> %s", msg.Author.ID, text))
	if err != nil {
		log.Warn("Failed to reply in channel", zap.Error(err))
		return
	}
	time.AfterFunc(h.replyTTL, func() {
		if err := h.session.ChannelMessageDelete(sent.ChannelID, sent.ID); err != nil {
			log.Debug("Failed to remove channel reply", zap.Error(err))
		}
	})
}
