package twitter

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StatusURL matches status permalinks pasted into chat; group 1 is the handle, group 2 the id.
var StatusURL = regexp.MustCompile(`twitter\.com/(\S*)/status/(\d+)`)

// MatchStatusURL finds the first status permalink in text.
func MatchStatusURL(text string) (handle string, id int64, ok bool) {
	m := StatusURL.FindStringSubmatch(text)
	if m == nil {
		return "", 0, false
	}
	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return m[1], id, true
}

var grouping = message.NewPrinter(language.English)

// FormatThousands renders n with comma thousands separators: 1234567 -> "1,234,567".
func FormatThousands(n int) string {
	return grouping.Sprintf("%d", n)
}

// Permalink is the public URL of a status.
func Permalink(handle string, id int64) string {
	return "https://twitter.com/" + handle + "/status/" + strconv.FormatInt(id, 10)
}

// expandLinks swaps shortened media links for the media URL, then shortened links for their targets.
func expandLinks(text string, s *Status) string {
	for _, m := range s.Media {
		if m.Short != "" {
			text = strings.ReplaceAll(text, m.Short, m.Long)
		}
	}
	for _, u := range s.URLs {
		if u.Short != "" {
			text = strings.ReplaceAll(text, u.Short, u.Long)
		}
	}
	return text
}

func formatStatus(s *Status) (string, error) {
	text := s.FullText
	if text == "" {
		text = s.Text
	}
	if text == "" {
		return "", newError(OpStatus, KindMissingText, nil)
	}
	return "@" + s.Handle + ": " + expandLinks(text, s) + " <" + Permalink(s.Handle, s.ID) + ">", nil
}

func formatProfile(handle string, p *Profile) string {
	var b strings.Builder
	b.WriteString("@" + handle + ": " + p.Name + ". ")
	b.WriteString("ID: " + strconv.FormatInt(p.ID, 10) + ". ")
	b.WriteString("Friend Count: " + FormatThousands(p.Friends) + ". ")
	b.WriteString("Followers: " + FormatThousands(p.Followers) + ". ")
	b.WriteString("Favourites: " + strconv.Itoa(p.Favourites) + ". ")
	b.WriteString("Location: " + p.Location + ". ")
	b.WriteString("Description: " + html.UnescapeString(p.Description))
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
