// Package blobs connects the suggestion queue to Discord: intake in the
// suggestions channel, reaction votes and the moderation commands.
package blobs

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"blobqueue/command/def"
	"blobqueue/handler"
	"blobqueue/model"
	"blobqueue/queue"
)

const (
	eventTimeout   = 30 * time.Second
	commandTimeout = 60 * time.Second
	revokeSelectID = "revoke_select"

	// channelReplyTTL is how long a channel reply stays up when the submitter's DMs are closed.
	channelReplyTTL = 25 * time.Second
)

// Handler owns the Discord side of the queue.
type Handler struct {
	svc       *queue.Service
	session   Session
	messenger *Messenger
	assets    *Assets
	notifier  queue.Notifier
	confirms  *Confirmations
	replyTTL  time.Duration

	cfg    model.Queue
	auth   model.Auth
	logger *zap.Logger
}

func NewHandler(svc *queue.Service, session Session, messenger *Messenger, assets *Assets, notifier queue.Notifier,
	cfg model.Queue, auth model.Auth, logger *zap.Logger) *Handler {
	return &Handler{
		svc:       svc,
		session:   session,
		messenger: messenger,
		assets:    assets,
		notifier:  notifier,
		confirms:  NewConfirmations(),
		replyTTL:  channelReplyTTL,
		cfg:       cfg,
		auth:      auth,
		logger:    logger.Named("blobs"),
	}
}

// Register wires the slash commands and components into r.
func (h *Handler) Register(r *handler.Router) {
	r.AddCommandHandler(def.ApproveCommand.Name, h.command(true, h.approve))
	r.AddCommandHandler(def.DenyCommand.Name, h.command(true, h.deny))
	r.AddCommandHandler(def.CompareCommand.Name, h.compareCommand)
	r.AddCommandHandler(def.StatusCommand.Name, h.command(true, h.status))
	r.AddCommandHandler(def.SuggestionsCommand.Name, h.command(true, h.suggestions))
	r.AddCommandHandler(def.VotesCommand.Name, h.command(true, h.votes))
	r.AddCommandHandler(def.RevokeCommand.Name, h.command(false, h.revoke))
	r.AddCommandHandler(def.RebuildCommand.Name, h.command(true, h.rebuild))

	r.AddComponentHandler(confirmButtonID, h.confirmButton)
	r.AddComponentHandler(cancelButtonID, h.confirmButton)
	r.AddComponentHandler(revokeSelectID, h.revokeSelect)
}

// NewHTTPClient is the client used to fetch attachments and emoji images.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}
