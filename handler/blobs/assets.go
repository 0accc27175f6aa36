package blobs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"blobqueue/model"
)

var errTooLarge = errors.New("image too large")

// Assets keeps suggestion emoji in the buffer guild.
type Assets struct {
	session  Session
	client   *http.Client
	guildID  string
	maxBytes int64
	logger   *zap.Logger
}

func NewAssets(session Session, client *http.Client, guildID string, maxBytes int, logger *zap.Logger) *Assets {
	return &Assets{
		session:  session,
		client:   client,
		guildID:  guildID,
		maxBytes: int64(maxBytes),
		logger:   logger.Named("assets"),
	}
}

// Upload creates a custom emoji named name from image data.
func (a *Assets) Upload(ctx context.Context, name string, data []byte, animated bool) (model.AssetRef, error) {
	if err := ctx.Err(); err != nil {
		return model.AssetRef{}, err
	}
	uri := fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))
	emoji, err := a.session.GuildEmojiCreate(a.guildID, &discordgo.EmojiParams{Name: name, Image: uri})
	if err != nil {
		return model.AssetRef{}, fmt.Errorf("create emoji %s: %w", name, err)
	}
	return model.AssetRef{ID: emoji.ID, Animated: emoji.Animated || animated}, nil
}

// Stage uploads a temporary copy of the suggestion's emoji under label.
func (a *Assets) Stage(ctx context.Context, s *model.Submission, label string) (model.StagedAsset, error) {
	data, err := a.Download(ctx, EmojiURL(s.Asset))
	if err != nil {
		return model.StagedAsset{}, err
	}
	label = CleanName(label)
	ref, err := a.Upload(ctx, label, data, s.Asset.Animated)
	if err != nil {
		return model.StagedAsset{}, err
	}
	a.logger.Debug("Staged emoji", zap.Int64("suggestion", s.Idx), zap.String("label", label), zap.String("emoji", ref.ID))
	return model.StagedAsset{Idx: s.Idx, Label: label, Ref: ref, Name: label}, nil
}

func (a *Assets) Unstage(ctx context.Context, staged model.StagedAsset) error {
	return a.Discard(ctx, staged.Ref)
}

func (a *Assets) Discard(ctx context.Context, ref model.AssetRef) error {
	if ref.ID == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.session.GuildEmojiDelete(a.guildID, ref.ID); err != nil {
		return fmt.Errorf("delete emoji %s: %w", ref.ID, err)
	}
	return nil
}

// Download fetches url, refusing bodies larger than the emoji size limit.
func (a *Assets) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > a.maxBytes {
		return nil, fmt.Errorf("download %s: %w: over %d bytes", url, errTooLarge, a.maxBytes)
	}
	return data, nil
}
