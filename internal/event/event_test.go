package event

import "testing"

func TestDecode_StringAndNumericIDs(t *testing.T) {
	rec, err := Decode([]byte(`{"id":"12345","type":"IssueCommentEvent","repo":{"name":"a/b"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.ID != "12345" {
		t.Errorf("ID = %q, want %q", rec.ID, "12345")
	}

	rec, err = Decode([]byte(`{"id":67890,"type":"IssueCommentEvent","repo":{"name":"a/b"}}`))
	if err != nil {
		t.Fatalf("Decode numeric id: %v", err)
	}
	if rec.ID != "67890" {
		t.Errorf("numeric ID = %q, want %q", rec.ID, "67890")
	}
}

func TestDecode_RetainsRaw(t *testing.T) {
	line := []byte(`{"id":"1","type":"PushEvent","repo":{"name":"a/b"}}`)
	rec, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	data, err := rec.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if string(data) != string(line) {
		t.Errorf("Data = %s, want original line", data)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "pull request title and body",
			line: `{"id":"1","type":"PullRequestEvent","payload":{"pull_request":{"title":"Fix bug","body":"Closes #1"}}}`,
			want: "Fix bug\nCloses #1",
		},
		{
			name: "pull request title only",
			line: `{"id":"2","type":"PullRequestEvent","payload":{"pull_request":{"title":"Fix bug"}}}`,
			want: "Fix bug",
		},
		{
			name: "issue comment body",
			line: `{"id":"3","type":"IssueCommentEvent","payload":{"comment":{"body":"looks wrong to me"}}}`,
			want: "looks wrong to me",
		},
		{
			name: "review comment body",
			line: `{"id":"4","type":"PullRequestReviewCommentEvent","payload":{"comment":{"body":"nit: rename"}}}`,
			want: "nit: rename",
		},
		{
			name: "review body",
			line: `{"id":"5","type":"PullRequestReviewEvent","payload":{"review":{"body":"approved with comments"}}}`,
			want: "approved with comments",
		},
		{
			name: "kind without text",
			line: `{"id":"6","type":"PushEvent","payload":{"size":3}}`,
			want: "",
		},
		{
			name: "missing payload sub-object",
			line: `{"id":"7","type":"PullRequestEvent","payload":{}}`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Decode([]byte(tt.line))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := rec.ExtractText(); got != tt.want {
				t.Errorf("ExtractText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorAssociation_Priority(t *testing.T) {
	// Comment wins over pull_request when both carry an association.
	line := `{"id":"1","type":"PullRequestReviewCommentEvent","payload":{
		"comment":{"body":"x","author_association":"MEMBER"},
		"pull_request":{"title":"t","author_association":"CONTRIBUTOR"}}}`
	rec, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rec.AuthorAssociation(); got != "MEMBER" {
		t.Errorf("AuthorAssociation = %q, want MEMBER", got)
	}

	// Falls through to the next block when the first is empty.
	line = `{"id":"2","type":"PullRequestEvent","payload":{
		"pull_request":{"title":"t","author_association":"OWNER"}}}`
	rec, err = Decode([]byte(line))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rec.AuthorAssociation(); got != "OWNER" {
		t.Errorf("AuthorAssociation = %q, want OWNER", got)
	}
}

func TestCleanedDate(t *testing.T) {
	c := Cleaned{CreatedAt: "2024-02-01T12:34:56Z"}
	if got := c.Date(); got != "2024-02-01" {
		t.Errorf("Date = %q, want 2024-02-01", got)
	}
	c = Cleaned{CreatedAt: "short"}
	if got := c.Date(); got != "short" {
		t.Errorf("Date = %q, want passthrough for short timestamps", got)
	}
}

func TestRepoKey(t *testing.T) {
	if got := RepoKey("  ExpressJS/Express "); got != "expressjs/express" {
		t.Errorf("RepoKey = %q", got)
	}
}
