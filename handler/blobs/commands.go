package blobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"blobqueue/handler"
	"blobqueue/model"
	"blobqueue/queue"
	"blobqueue/utils"
)

// maxInlineTable is how long a rendered table may get before it is sent as a file.
const maxInlineTable = 1900

type commandFunc func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error)

// command wraps run in a deferred ephemeral response. council restricts it to
// developers and council roles.
func (h *Handler) command(council bool, run commandFunc) handler.HandlerFunc {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if council && !h.authorized(i) {
			h.respondEphemeral(s, i, notAuthorizedMsg)
			return
		}
		if !h.deferReply(s, i, discordgo.InteractionResponseDeferredChannelMessageWithSource) {
			return
		}
		go h.finish(s, i, commandTimeout, run)
	}
}

func (h *Handler) approve(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	opts := optionMap(i)
	user := interactionUser(i)
	reason := stringOption(opts, "reason")

	sub, err := h.svc.Approve(ctx, intOption(opts, "suggestion"), user.ID, reason)
	if err != nil {
		return nil, err
	}
	h.messenger.Log(fmt.Sprintf("✅ Suggestion #%d force approved by <@%s> (%s)\n%s", sub.Idx, user.ID, user.ID, reasonText(reason)))
	return textEdit(fmt.Sprintf("✅ Successfully approved #%d.", sub.Idx)), nil
}

func (h *Handler) deny(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	opts := optionMap(i)
	user := interactionUser(i)
	reason := stringOption(opts, "reason")

	sub, err := h.svc.Deny(ctx, intOption(opts, "suggestion"), user.ID, reason)
	if err != nil {
		return nil, err
	}
	h.messenger.Log(fmt.Sprintf("❌ Suggestion #%d force denied by <@%s> (%s)\n%s", sub.Idx, user.ID, user.ID, reasonText(reason)))
	return textEdit(fmt.Sprintf("✅ Successfully denied #%d.", sub.Idx)), nil
}

// compareCommand outlives the usual command timeout since it waits for the confirmation buttons.
func (h *Handler) compareCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.authorized(i) {
		h.respondEphemeral(s, i, notAuthorizedMsg)
		return
	}
	if !h.deferReply(s, i, discordgo.InteractionResponseDeferredChannelMessageWithSource) {
		return
	}
	go h.finish(s, i, h.cfg.CompareTimeout+commandTimeout, h.compare)
}

func (h *Handler) compare(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	entries, err := ParseIndices(stringOption(optionMap(i), "entries"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", queue.ErrValidation, err)
	}

	confirmer := &interactionConfirmer{
		session:     s,
		interaction: i.Interaction,
		registry:    h.confirms,
		verbose:     h.cfg.VerboseCompare,
	}
	c, err := h.svc.Compare(ctx, interactionUser(i).ID, entries, confirmer)
	if err != nil {
		return nil, err
	}

	switch c.State {
	case model.ComparisonConfirmed:
		lines := make([]string, 0, len(c.Entries))
		for _, idx := range c.Entries {
			t := c.FinalTallies[idx]
			lines = append(lines, fmt.Sprintf("#%d had %d upvotes, %d downvotes.", idx, t.Up, t.Down))
		}
		return textEdit("✅ Successfully created VS vote.\n" + strings.Join(lines, "\n")), nil
	case model.ComparisonRejected:
		return textEdit("Comparison cancelled, nothing was changed."), nil
	default:
		return textEdit("Comparison timed out, nothing was changed."), nil
	}
}

func (h *Handler) confirmButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	key, id, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
	if err := h.confirms.Resolve(id, interactionUser(i).ID, key == confirmButtonID); err != nil {
		h.respondEphemeral(s, i, "❌ "+err.Error())
		return
	}
	h.deferReply(s, i, discordgo.InteractionResponseDeferredMessageUpdate)
}

func (h *Handler) status(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	sub, err := h.svc.Status(ctx, intOption(optionMap(i), "suggestion"))
	if err != nil {
		return nil, err
	}
	return &discordgo.WebhookEdit{Embeds: &[]*discordgo.MessageEmbed{SuggestionEmbed(sub)}}, nil
}

func (h *Handler) suggestions(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	limit := queue.DefaultListLimit
	if opt, ok := optionMap(i)["limit"]; ok {
		limit = int(opt.IntValue())
	}
	subs, err := h.svc.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return textEdit("ℹ️ There are no suggestions yet."), nil
	}

	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{
			strconv.FormatInt(sub.Idx, 10),
			":" + sub.Name + ":",
			sub.SubmitterID,
			fmt.Sprintf("▲ %d / ▼ %d", sub.Upvotes, sub.Downvotes),
			sub.StatusText(),
		})
	}
	return tableEdit("suggestions.txt", []string{"#", "Name", "Submitted By", "Points", "Status"}, rows)
}

func (h *Handler) votes(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	target := ParseLookup(stringOption(optionMap(i), "target"))
	entries, err := h.svc.VoteHistory(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return textEdit(fmt.Sprintf("ℹ️ No votes found for `%s`.", target)), nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.SuggestionIdx, 10),
			e.ReviewerID,
			string(e.Pool),
			voteText(e),
			e.VotedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		})
	}
	return tableEdit("votes.txt", []string{"#", "User", "Queue", "Vote", "When"}, rows)
}

func (h *Handler) revoke(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	pending, err := h.svc.PendingFor(ctx, interactionUser(i).ID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return textEdit(nothingToRevoke), nil
	}
	// Select menus hold at most 25 options.
	if len(pending) > 25 {
		pending = pending[:25]
	}

	options := make([]discordgo.SelectMenuOption, 0, len(pending))
	for _, sub := range pending {
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("#%d :%s:", sub.Idx, sub.Name),
			Value:       strconv.FormatInt(sub.Idx, 10),
			Description: "Submitted " + sub.SubmittedAt.UTC().Format(time.DateTime),
		})
	}
	return &discordgo.WebhookEdit{
		Content: utils.StringPtr("Please pick a suggestion to revoke."),
		Components: &[]discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    revokeSelectID,
						Placeholder: "Suggestion to revoke",
						Options:     options,
					},
				},
			},
		},
	}, nil
}

func (h *Handler) revokeSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferReply(s, i, discordgo.InteractionResponseDeferredMessageUpdate) {
		return
	}
	go h.finish(s, i, commandTimeout, func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
		values := i.MessageComponentData().Values
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: no suggestion picked", queue.ErrValidation)
		}
		idx, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a suggestion number", queue.ErrValidation, values[0])
		}

		user := interactionUser(i)
		sub, err := h.svc.Revoke(ctx, idx, user.ID)
		if err != nil {
			return nil, err
		}
		h.messenger.Log(fmt.Sprintf("❌ Suggestion #%d was manually revoked by <@%s> (%s)", sub.Idx, user.ID, user.ID))
		return &discordgo.WebhookEdit{
			Content:    utils.StringPtr(fmt.Sprintf(revokedMsg, sub.Idx)),
			Components: &[]discordgo.MessageComponent{},
		}, nil
	})
}

func (h *Handler) rebuild(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.WebhookEdit, error) {
	dryRun := false
	if opt, ok := optionMap(i)["dry_run"]; ok {
		dryRun = opt.BoolValue()
	}
	report, err := h.svc.Reconcile(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return textEdit(fmt.Sprintf("🔍 %d messages would be re-posted (review queue: %d, public queue: %d).",
			report.Total(), report.Review, report.Public)), nil
	}
	return textEdit(fmt.Sprintf("✅ Re-posted %d messages (review queue: %d, public queue: %d, failed: %d).",
		report.Total()-report.Failed, report.Review, report.Public, report.Failed)), nil
}

func (h *Handler) finish(s *discordgo.Session, i *discordgo.InteractionCreate, timeout time.Duration, run commandFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	edit, err := run(ctx, s, i)
	if err != nil {
		edit = textEdit(h.errorText(i, err))
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		h.logger.Error("Failed to edit interaction response", zap.String("interaction", interactionName(i)), zap.Error(err))
	}
}

// errorText shows request errors to the user and hides everything else behind a generic message.
func (h *Handler) errorText(i *discordgo.InteractionCreate, err error) string {
	for _, known := range []error{
		queue.ErrNotFound,
		queue.ErrValidation,
		queue.ErrIllegalTransition,
		queue.ErrForbidden,
		queue.ErrComparisonBusy,
	} {
		if errors.Is(err, known) {
			return "❌ " + err.Error()
		}
	}
	h.logger.Error("Interaction failed", zap.String("interaction", interactionName(i)), zap.Error(err))
	return "❌ Something went wrong, please try again later."
}

func (h *Handler) authorized(i *discordgo.InteractionCreate) bool {
	user := interactionUser(i)
	if user == nil {
		return false
	}
	var roles []string
	if i.Member != nil {
		roles = i.Member.Roles
	}
	return utils.CheckAuth(h.auth, user.ID, roles)
}

func (h *Handler) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, kind discordgo.InteractionResponseType) bool {
	resp := &discordgo.InteractionResponse{Type: kind}
	if kind == discordgo.InteractionResponseDeferredChannelMessageWithSource {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		h.logger.Error("Error sending deferred response", zap.String("interaction", interactionName(i)), zap.Error(err))
		return false
	}
	return true
}

func (h *Handler) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Error("Error sending response", zap.String("interaction", interactionName(i)), zap.Error(err))
	}
}

func tableEdit(filename string, header []string, rows [][]string) (*discordgo.WebhookEdit, error) {
	text, err := utils.RenderTable(header, rows)
	if err != nil {
		return nil, err
	}
	if block := utils.CodeBlock(text); len(block) <= maxInlineTable {
		return textEdit(block), nil
	}
	return &discordgo.WebhookEdit{
		Content: utils.StringPtr(fmt.Sprintf("%d rows, see the attached file.", len(rows))),
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "text/plain",
			Reader:      strings.NewReader(text),
		}},
	}, nil
}

func textEdit(content string) *discordgo.WebhookEdit {
	return &discordgo.WebhookEdit{Content: utils.StringPtr(content)}
}

func voteText(e model.VoteEntry) string {
	switch {
	case e.HasApproved && e.HasDenied:
		return "Both"
	case e.HasApproved:
		return "Yes"
	default:
		return "No"
	}
}

func reasonText(reason string) string {
	if reason == "" {
		return "No reason provided."
	}
	return "Reason: " + reason
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if opt, ok := opts[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func interactionName(i *discordgo.InteractionCreate) string {
	if i.Type == discordgo.InteractionMessageComponent {
		return i.MessageComponentData().CustomID
	}
	return i.ApplicationCommandData().Name
}
