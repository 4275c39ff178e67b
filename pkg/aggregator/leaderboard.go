package aggregator

import (
	"sort"
	"strings"

	"github.com/umputun/devpulse/pkg/domain"
)

// displayTitleWidth is the max display width of a leaderboard title,
// counted in full-width character units
const displayTitleWidth = 11

// TopArticles joins per-page analytics views onto Zenn articles and
// returns the top n by view count, descending. The slug is the last
// segment of the article path; the first analytics path containing the
// slug as a substring wins, not the most specific match. Articles with
// no matching path get zero views. Equal view counts keep the input
// article order.
func TopArticles(zenn []domain.ZennArticle, pages []domain.PageStat, n int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(zenn))

	for _, a := range zenn {
		slug := a.Path
		if idx := strings.LastIndex(slug, "/"); idx >= 0 {
			slug = slug[idx+1:]
		}

		views := 0
		if slug != "" {
			for _, p := range pages {
				if strings.Contains(p.Path, slug) {
					views = p.Views
					break
				}
			}
		}

		title := a.Title
		if a.Emoji != "" {
			title = a.Emoji + " " + a.Title
		}
		entries = append(entries, domain.LeaderboardEntry{
			Title:        title,
			DisplayTitle: TruncateDisplayWidth(a.Title, displayTitleWidth),
			Views:        views,
			Likes:        a.Likes,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Views > entries[j].Views })
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// TruncateDisplayWidth cuts text to maxFullWidth full-width character
// units, counting non-ASCII runes as two units, and appends "..." when
// anything was cut off.
func TruncateDisplayWidth(text string, maxFullWidth int) string {
	limit := maxFullWidth * 2
	width := 0
	var b strings.Builder

	for _, r := range text {
		w := 2
		if (r >= 0x01 && r <= 0x7e) || (r >= 0xa1 && r <= 0xdf) {
			w = 1
		}
		width += w
		if width > limit {
			return b.String() + "..."
		}
		b.WriteRune(r)
	}
	return text
}
