package clean

import (
	"context"
	"fmt"
	"testing"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/storage"
)

func seedEvents(t *testing.T, s *storage.Store, lines ...string) {
	t.Helper()
	for _, line := range lines {
		rec, err := event.Decode([]byte(line))
		if err != nil {
			t.Fatalf("decoding seed line: %v", err)
		}
		row, err := storage.RowFromRecord(rec)
		if err != nil {
			t.Fatalf("projecting seed row: %v", err)
		}
		if err := s.UpsertBatch(storage.TableEvents, []storage.Row{row}); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}
}

func commentLine(id, login, body string) string {
	return fmt.Sprintf(`{"id":%q,"type":"IssueCommentEvent","actor":{"login":%q},"repo":{"name":"a/b"},"payload":{"comment":{"body":%q}},"created_at":"2024-02-01T10:00:00Z"}`, id, login, body)
}

func TestCleaner_Run(t *testing.T) {
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	seedEvents(t, s,
		commentLine("1", "octocat", "This change needs a regression test before merging."),
		commentLine("2", "dependabot[bot]", "Bump lodash from 4.17.20 to 4.17.21"),
		commentLine("3", "octocat", "lgtm"),
	)

	cleaner := NewCleaner(s, Default(Options{}))
	counts, err := cleaner.Run(context.Background(), storage.TableEvents, storage.TableCleaned)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if counts.Read != 3 {
		t.Errorf("Read = %d, want 3", counts.Read)
	}
	if counts.Duplicates != 0 {
		t.Errorf("Duplicates = %d, want 0", counts.Duplicates)
	}
	if counts.Written != 1 {
		t.Errorf("Written = %d, want 1", counts.Written)
	}

	n, err := s.Count(storage.TableCleaned)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("cleaned table has %d rows, want 1", n)
	}

	for row, err := range s.ReadAll(storage.TableCleaned) {
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		c, err := event.DecodeCleaned(row.EventData)
		if err != nil {
			t.Fatalf("DecodeCleaned: %v", err)
		}
		if c.ID != "1" {
			t.Errorf("surviving record id = %q, want 1", c.ID)
		}
		if c.CleanedText != "this change needs a regression test before merging." {
			t.Errorf("CleanedText = %q", c.CleanedText)
		}
	}
}

func TestCleaner_Rerunnable(t *testing.T) {
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	seedEvents(t, s, commentLine("1", "octocat", "Rerunning must not duplicate output rows."))

	cleaner := NewCleaner(s, Default(Options{}))
	for i := 0; i < 2; i++ {
		if _, err := cleaner.Run(context.Background(), storage.TableEvents, storage.TableCleaned); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}

	n, err := s.Count(storage.TableCleaned)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("cleaned table has %d rows after rerun, want 1", n)
	}
}

func TestCleaner_PanickingStepDropsRecordOnly(t *testing.T) {
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	seedEvents(t, s,
		commentLine("1", "octocat", "poison pill"),
		commentLine("2", "octocat", "a perfectly ordinary comment"),
	)

	boom := func(ctx *Context) *Context {
		if ctx.Text == "poison pill" {
			panic("bad record")
		}
		return ctx
	}
	wf := NewWorkflow(ExtractText, boom, tokenizeRaw, Finalize)

	cleaner := NewCleaner(s, wf)
	counts, err := cleaner.Run(context.Background(), storage.TableEvents, storage.TableCleaned)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if counts.Written != 1 {
		t.Errorf("Written = %d, want 1 (poison record dropped, rest kept)", counts.Written)
	}
}

// tokenizeRaw tokenizes the raw extracted text; the panic test skips the
// stripping steps on purpose.
func tokenizeRaw(ctx *Context) *Context {
	ctx.Cleaned = ctx.Text
	ctx.Tokens = Tokenize(ctx.Text)
	return ctx
}

func TestCleaner_SavesRunMetadata(t *testing.T) {
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	seedEvents(t, s, commentLine("1", "octocat", "metadata should record this run"))

	cleaner := NewCleaner(s, Default(Options{}))
	counts, err := cleaner.Run(context.Background(), storage.TableEvents, storage.TableCleaned)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	meta, err := s.LoadRunMetadata("last_cleaning")
	if err != nil {
		t.Fatalf("LoadRunMetadata: %v", err)
	}
	if meta.Read != counts.Read || meta.Written != counts.Written {
		t.Errorf("metadata %+v does not match counts %+v", meta, counts)
	}
}
