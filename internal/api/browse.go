package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/storage"
)

// BrowseMarkdown renders cleaned records as one Markdown document per
// repository, grouped by date, with a metadata block per record. An empty
// repo filter includes everything.
func BrowseMarkdown(store *storage.Store, repo string) (string, error) {
	repoKey := event.RepoKey(repo)
	byRepo := make(map[string][]event.Cleaned)

	for row, err := range store.ReadAll(storage.TableCleaned) {
		if err != nil {
			return "", fmt.Errorf("reading cleaned records: %w", err)
		}
		c, err := event.DecodeCleaned(row.EventData)
		if err != nil {
			continue
		}
		if repoKey != "" && event.RepoKey(c.Repo) != repoKey {
			continue
		}
		byRepo[c.Repo] = append(byRepo[c.Repo], c)
	}

	repos := make([]string, 0, len(byRepo))
	for name := range byRepo {
		repos = append(repos, name)
	}
	sort.Strings(repos)

	var b strings.Builder
	for _, name := range repos {
		b.WriteString(repoMarkdown(name, byRepo[name]))
	}
	if b.Len() == 0 {
		return "# No cleaned records\n", nil
	}
	return b.String(), nil
}

func repoMarkdown(repo string, records []event.Cleaned) string {
	byDate := make(map[string][]event.Cleaned)
	for _, rec := range records {
		if d := rec.Date(); d != "" {
			byDate[d] = append(byDate[d], rec)
		}
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var b strings.Builder
	fmt.Fprintf(&b, "# Repo: %s\n\n", repo)
	for _, date := range dates {
		fmt.Fprintf(&b, "## %s\n\n", date)
		for i, rec := range byDate[date] {
			b.WriteString(recordMarkdown(rec, i+1))
		}
	}
	return b.String()
}

func recordMarkdown(rec event.Cleaned, number int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %d.\n\n", number)
	fmt.Fprintf(&b, "- **id:** %s\n", rec.ID)
	fmt.Fprintf(&b, "- **repo:** %s\n", rec.Repo)
	fmt.Fprintf(&b, "- **created_at:** %s\n", rec.CreatedAt)
	fmt.Fprintf(&b, "- **type:** %s\n", rec.Type)
	fmt.Fprintf(&b, "- **author_association:** %s\n", rec.AuthorAssociation)
	fmt.Fprintf(&b, "- **tokens:** %s\n\n", strings.Join(rec.Tokens, " "))
	b.WriteString(rec.CleanedText)
	b.WriteString("\n\n---\n\n")
	return b.String()
}
