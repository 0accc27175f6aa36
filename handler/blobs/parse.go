package blobs

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	// nameRe also matches the name part of a custom emoji, since replacements for existing ones get posted.
	nameRe        = regexp.MustCompile(`(\w{2,32}):?\d?`)
	noteRe        = regexp.MustCompile(`(?s)- (.+)$`)
	invalidNameRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	mentionRe     = regexp.MustCompile(`^<@!?(\d+)>$`)
)

var allowedExtensions = []string{".png", ".jpg", ".gif"}

// Discord refuses emoji names shorter than this.
const minNameLength = 2

// Intake is what a message in the suggestions channel asks for.
type Intake struct {
	Name       string
	Note       string
	Attachment *discordgo.MessageAttachment
	Animated   bool
}

// rejection is an intake failure the submitter is told about.
type rejection struct {
	reason string
	reply  string
}

func (r *rejection) Error() string {
	return r.reason
}

// ParseIntake extracts the emoji name, note and image from a suggestion message.
// maxBytes bounds the attachment size reported by Discord.
func ParseIntake(content string, attachments []*discordgo.MessageAttachment, maxBytes int) (*Intake, error) {
	if len(attachments) == 0 {
		return nil, &rejection{reason: "no attachment", reply: badSuggestionMsg}
	}
	att := attachments[0]

	ext := strings.ToLower(path.Ext(att.Filename))
	if !slices.Contains(allowedExtensions, ext) {
		return nil, &rejection{reason: "unsupported format " + ext, reply: badSuggestionMsg}
	}
	if maxBytes > 0 && att.Size > maxBytes {
		return nil, &rejection{reason: fmt.Sprintf("attachment is %d bytes", att.Size), reply: tooLargeMsg}
	}

	name := ParseName(content, att.Filename)
	if len(name) < minNameLength {
		return nil, &rejection{reason: fmt.Sprintf("name %q is too short", name), reply: badSuggestionMsg}
	}

	return &Intake{
		Name:       name,
		Note:       ParseNote(content),
		Attachment: att,
		Animated:   ext == ".gif",
	}, nil
}

// ParseName picks the emoji name from the message, falling back to the file name.
func ParseName(content, filename string) string {
	var name string
	if m := nameRe.FindStringSubmatch(content); m != nil {
		name = m[1]
	} else {
		// 36 characters minus a four character extension keeps the name within 32.
		if len(filename) > 36 {
			filename = filename[:36]
		}
		name = filename[:max(len(filename)-4, 0)]
	}
	return CleanName(name)
}

// ParseNote returns everything after the first "- " in content.
func ParseNote(content string) string {
	m := noteRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

// CleanName replaces every character an emoji name cannot hold with an underscore.
func CleanName(name string) string {
	return invalidNameRe.ReplaceAllString(name, "_")
}

// ParseIndices parses suggestion indices separated by spaces or commas, with an optional leading "#".
func ParseIndices(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.ParseInt(strings.TrimPrefix(f, "#"), 10, 64)
		if err != nil || idx < 1 {
			return nil, fmt.Errorf("%q is not a suggestion number", f)
		}
		out = append(out, idx)
	}
	return out, nil
}

// ParseLookup turns a user mention into a bare id. Anything else is returned trimmed.
func ParseLookup(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := mentionRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimPrefix(raw, "#")
}
