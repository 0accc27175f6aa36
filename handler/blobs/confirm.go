package blobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync/v4"

	"blobqueue/model"
	"blobqueue/utils"
)

const (
	confirmButtonID = "compare_confirm"
	cancelButtonID  = "compare_cancel"
)

var (
	errNoConfirmation = errors.New("this comparison is no longer waiting for confirmation")
	errNotRequester   = errors.New("only the moderator who started the comparison can answer")
)

type pendingConfirm struct {
	requester string
	answer    chan bool
}

// Confirmations tracks comparisons waiting for a button press.
type Confirmations struct {
	pending *xsync.Map[string, *pendingConfirm]
}

func NewConfirmations() *Confirmations {
	return &Confirmations{pending: xsync.NewMap[string, *pendingConfirm]()}
}

func (c *Confirmations) open(id, requester string) <-chan bool {
	p := &pendingConfirm{requester: requester, answer: make(chan bool, 1)}
	c.pending.Store(id, p)
	return p.answer
}

func (c *Confirmations) close(id string) {
	c.pending.Delete(id)
}

// Resolve answers the comparison id on behalf of userID.
func (c *Confirmations) Resolve(id, userID string, ok bool) error {
	p, found := c.pending.Load(id)
	if !found {
		return errNoConfirmation
	}
	if p.requester != userID {
		return errNotRequester
	}
	if _, loaded := c.pending.LoadAndDelete(id); !loaded {
		return errNoConfirmation
	}
	p.answer <- ok
	return nil
}

// Pending returns the number of comparisons awaiting an answer.
func (c *Confirmations) Pending() int {
	return c.pending.Size()
}

type followupSession interface {
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageEdit(interaction *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// interactionConfirmer asks the moderator behind an interaction to confirm a
// comparison with a pair of buttons on an ephemeral followup.
type interactionConfirmer struct {
	session     followupSession
	interaction *discordgo.Interaction
	registry    *Confirmations
	verbose     bool
}

func (ic *interactionConfirmer) Confirm(ctx context.Context, c *model.Comparison) (bool, error) {
	answer := ic.registry.open(c.ID, c.RequestedBy)
	defer ic.registry.close(c.ID)

	msg, err := ic.session.FollowupMessageCreate(ic.interaction, true, &discordgo.WebhookParams{
		Content: fmt.Sprintf("**Create a VS vote?** It will look like:\n\n%s\n\nThis expires <t:%d:R>.",
			c.Render(ic.verbose), c.Deadline.Unix()),
		Flags: discordgo.MessageFlagsEphemeral,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Post",
						Style:    discordgo.SuccessButton,
						CustomID: confirmButtonID + ":" + c.ID,
					},
					discordgo.Button{
						Label:    "Cancel",
						Style:    discordgo.DangerButton,
						CustomID: cancelButtonID + ":" + c.ID,
					},
				},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("send confirmation prompt: %w", err)
	}

	select {
	case ok := <-answer:
		outcome := "❌ Comparison cancelled."
		if ok {
			outcome = "⏳ Posting comparison..."
		}
		ic.finish(msg.ID, outcome)
		return ok, nil
	case <-ctx.Done():
		ic.finish(msg.ID, "⌛ Comparison timed out.")
		return false, ctx.Err()
	}
}

// finish replaces the prompt and drops its buttons.
func (ic *interactionConfirmer) finish(messageID, content string) {
	_, _ = ic.session.FollowupMessageEdit(ic.interaction, messageID, &discordgo.WebhookEdit{
		Content:    utils.StringPtr(content),
		Components: &[]discordgo.MessageComponent{},
	})
}
