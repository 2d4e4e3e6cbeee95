// Package embed renders issues and colors into rich chat documents
package embed

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/omega-numworks/omegabot/colorapi"
	"github.com/omega-numworks/omegabot/tracker"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// Size limits of a rendered document, in characters
const (
	MaxDescriptionLength = 2048
	MaxFieldLength       = 1024
)

const (
	truncationMarker = "[...]"
	elisionLine      = "..."

	commitsFieldName    = "Commits"
	additionalFieldName = "Additional informations"

	closedAtLayout = "Jan. 02 15:04 2006"
)

// Author is the author line of a document
type Author struct {
	Name    string
	URL     string
	IconURL string
}

// Field is a named block of text displayed under the description
type Field struct {
	Name  string
	Value string
}

// Document is a display-ready rich message
type Document struct {
	Title       string
	URL         string
	Description string
	Author      *Author

	// Color is the accent color as a 24 bit rgb value. Only meaningful when HasColor is true
	Color    int
	HasColor bool

	Fields []Field
}

// RenderIssue renders an issue. The commits are only rendered when the issue is a pull request
// and commits is non-nil
func RenderIssue(issue *tracker.Issue, commits []tracker.Commit) (d *Document) {
	d = &Document{
		Title:       issue.Title,
		URL:         issue.URL,
		Description: TruncateDescription(issue.Body),
		Author:      &Author{Name: issue.Author.Login, URL: issue.Author.URL, IconURL: issue.Author.AvatarURL},
		Fields:      make([]Field, 0, 2),
	}

	infos := make([]string, 0)
	if issue.Locked {
		infos = append(infos, ":lock: locked")
	}

	if issue.IsPullRequest() {
		infos = append(infos, ":arrows_clockwise: Pull request")

		if commits != nil {
			d.Fields = append(d.Fields, Field{Name: commitsFieldName, Value: TruncateLines(commitLines(commits), MaxFieldLength)})
		}
	}

	if issue.Comments > 0 {
		infos = append(infos, fmt.Sprintf(":speech_balloon: Comments : %d", issue.Comments))
	}

	switch issue.State {
	case "closed":
		infos = append(infos, fmt.Sprintf(":x: Closed by %s on %s", issue.ClosedBy, issue.ClosedAt.UTC().Format(closedAtLayout)))
	case "open":
		infos = append(infos, ":white_check_mark: Open")
	}

	if len(issue.Labels) > 0 {
		infos = append(infos, fmt.Sprintf(":label: Labels: `%s`", strings.Join(issue.Labels, "` `")))
	}

	d.Fields = append(d.Fields, Field{Name: additionalFieldName, Value: truncateField(strings.Join(infos, "\n"))})

	return d
}

func commitLines(commits []tracker.Commit) (lines []string) {
	lines = make([]string, 0, len(commits))
	for _, c := range commits {
		lines = append(lines, fmt.Sprintf("<%s|`%s`> %s - %s", c.URL, c.ShortSHA, c.Message, c.CommitterLogin))
	}

	return lines
}

// RenderColor renders a color looked up from the six hexadecimal digits of code
func RenderColor(color *colorapi.Color, code string) (d *Document, err error) {
	accent, err := strconv.ParseInt(code, 16, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid color code [%s]", code)
	}

	lines := []string{fmt.Sprintf("*Hex:* #%s", code)}
	for _, f := range color.Formats {
		lines = append(lines, fmt.Sprintf("*%s:* %s", capitalize(f.Name), strings.Join(f.Components, ", ")))
	}

	return &Document{
		Title:       fmt.Sprintf("%s color", color.Name),
		Description: TruncateDescription(strings.Join(lines, "\n")),
		Color:       int(accent),
		HasColor:    true,
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}

// TruncateDescription cuts a description longer than MaxDescriptionLength characters down
// to exactly MaxDescriptionLength characters, the last ones being a truncation marker
func TruncateDescription(description string) string {
	return truncate(description, MaxDescriptionLength)
}

func truncateField(value string) string {
	return truncate(value, MaxFieldLength)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return string(runes[:limit-utf8.RuneCountInString(truncationMarker)]) + truncationMarker
}

// TruncateLines joins lines with newlines. When the result is longer than limit characters,
// lines are removed from the middle and an ellipsis line takes their place:
//
//	excess := length - limit + 4
//	while excess > 0: pop the line at count/2, excess -= its length + 1
//	insert "..." at remaining/2 + 1
//
// The ellipsis lands just after the middle of what remains
func TruncateLines(lines []string, limit int) string {
	result := strings.Join(lines, "\n")

	length := utf8.RuneCountInString(result)
	if length <= limit {
		return result
	}

	remaining := make([]string, len(lines))
	copy(remaining, lines)

	excess := length - limit + 4
	for excess > 0 && len(remaining) > 0 {
		i := len(remaining) / 2
		excess -= utf8.RuneCountInString(remaining[i]) + 1
		remaining = append(remaining[:i], remaining[i+1:]...)
	}

	at := len(remaining)/2 + 1
	if at > len(remaining) {
		at = len(remaining)
	}

	remaining = append(remaining, "")
	copy(remaining[at+1:], remaining[at:])
	remaining[at] = elisionLine

	return strings.Join(remaining, "\n")
}

// Attachment converts the document to a slack message attachment
func (d *Document) Attachment() (a slack.Attachment) {
	a = slack.Attachment{
		Fallback:   d.Title,
		Title:      d.Title,
		TitleLink:  d.URL,
		Text:       d.Description,
		MarkdownIn: []string{"text", "fields"},
	}

	if d.Author != nil {
		a.AuthorName = d.Author.Name
		a.AuthorLink = d.Author.URL
		a.AuthorIcon = d.Author.IconURL
	}

	if d.HasColor {
		a.Color = fmt.Sprintf("#%06x", d.Color)
	}

	for _, f := range d.Fields {
		a.Fields = append(a.Fields, slack.AttachmentField{Title: f.Name, Value: f.Value})
	}

	return a
}
