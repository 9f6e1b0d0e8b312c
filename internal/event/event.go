// Package event models GitHub archive events and the cleaned records derived
// from them. Records stay close to the wire JSON: the payload is kept as a
// raw blob and only the fields needed for filtering, indexing, and text
// extraction are decoded.
package event

import (
	"encoding/json"
	"strings"
)

// Event kinds relevant to pull-request discussion mining.
const (
	KindPullRequest     = "PullRequestEvent"
	KindPRReview        = "PullRequestReviewEvent"
	KindPRReviewComment = "PullRequestReviewCommentEvent"
	KindIssueComment    = "IssueCommentEvent"
)

// DefaultKinds is the canonical event-kind allowlist for extraction.
func DefaultKinds() []string {
	return []string{KindPullRequest, KindPRReview, KindPRReviewComment, KindIssueComment}
}

// ID is an event identifier. The archive serves ids as strings or numbers
// depending on era; both decode to the same string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Actor is the user that triggered an event.
type Actor struct {
	Login        string `json:"login"`
	DisplayLogin string `json:"display_login,omitempty"`
}

// Repo identifies the repository an event belongs to.
type Repo struct {
	Name string `json:"name"`
}

// Record is one GitHub archive event. Payload is kept raw; the full original
// line (when the record came off the wire) is retained in Raw so persistence
// is lossless.
type Record struct {
	ID        ID              `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt string          `json:"created_at"`

	Raw []byte `json:"-"`
}

// Decode parses one line of archive JSON into a Record, retaining the
// original bytes in Raw.
func Decode(line []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return Record{}, err
	}
	r.Raw = append([]byte(nil), line...)
	return r, nil
}

// Data returns the serialized form of the record: the original wire bytes
// when present, a fresh marshalling otherwise.
func (r Record) Data() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(r)
}

// textBlock covers the payload sub-objects that can carry discussion text.
type textBlock struct {
	Title             string `json:"title"`
	Body              string `json:"body"`
	AuthorAssociation string `json:"author_association"`
}

type payloadFields struct {
	PullRequest *textBlock `json:"pull_request"`
	Comment     *textBlock `json:"comment"`
	Review      *textBlock `json:"review"`
	Issue       *textBlock `json:"issue"`
}

func (r Record) payloadFields() payloadFields {
	var p payloadFields
	if len(r.Payload) > 0 {
		// Malformed payloads leave p zero-valued; callers treat that as
		// "no text, no association".
		json.Unmarshal(r.Payload, &p)
	}
	return p
}

// ExtractText returns the natural-language text of the event: PR title+body
// for PullRequestEvent, comment body for comment events, review body for
// review events. Returns "" for kinds without text.
func (r Record) ExtractText() string {
	p := r.payloadFields()
	switch r.Type {
	case KindPullRequest:
		if p.PullRequest == nil {
			return ""
		}
		if p.PullRequest.Body != "" {
			return p.PullRequest.Title + "\n" + p.PullRequest.Body
		}
		return p.PullRequest.Title
	case KindPRReviewComment, KindIssueComment:
		if p.Comment == nil {
			return ""
		}
		return p.Comment.Body
	case KindPRReview:
		if p.Review == nil {
			return ""
		}
		return p.Review.Body
	}
	return ""
}

// AuthorAssociation returns the acting user's relationship to the repository,
// read from whichever payload sub-object carries it. Priority: comment,
// review, pull request, issue; first non-empty wins.
func (r Record) AuthorAssociation() string {
	p := r.payloadFields()
	for _, b := range []*textBlock{p.Comment, p.Review, p.PullRequest, p.Issue} {
		if b != nil && b.AuthorAssociation != "" {
			return b.AuthorAssociation
		}
	}
	return ""
}

// Cleaned is the slimmed record produced by the transform workflow.
type Cleaned struct {
	ID                string   `json:"id"`
	CleanedText       string   `json:"cleaned_text"`
	Repo              string   `json:"repo"`
	CreatedAt         string   `json:"created_at"`
	Type              string   `json:"type"`
	AuthorAssociation string   `json:"author_association"`
	Tokens            []string `json:"tokens"`
}

// DecodeCleaned parses a stored cleaned record.
func DecodeCleaned(data []byte) (Cleaned, error) {
	var c Cleaned
	err := json.Unmarshal(data, &c)
	return c, err
}

// Date returns the YYYY-MM-DD prefix of the cleaned record's timestamp.
func (c Cleaned) Date() string {
	if len(c.CreatedAt) < 10 {
		return c.CreatedAt
	}
	return c.CreatedAt[:10]
}

// RepoKey normalizes a repository full name for case-insensitive lookups.
func RepoKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
