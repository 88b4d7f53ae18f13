package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven/mocks"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-core/internal/normalisers"
	"github.com/ledgerlens/ledgerlens-core/internal/postprocessors"
)

func newTestIngest() (*IngestOrchestrator, *mocks.MockTransactionStore, *mocks.MockVectorIndex) {
	store := mocks.NewMockTransactionStore()
	index := mocks.NewMockVectorIndex()
	o := NewIngestOrchestrator(IngestOrchestratorConfig{
		Store:      store,
		Index:      index,
		Normaliser: normalisers.New(),
		Pipeline:   postprocessors.DefaultPipeline(),
	})
	return o, store, index
}

func testSession() *domain.Session {
	now := time.Now()
	return &domain.Session{ID: "test-session", CreatedAt: now, LastUsed: now}
}

func upload(name, body string) driving.StatementUpload {
	return driving.StatementUpload{
		Name:        name,
		Size:        int64(len(body)),
		ContentType: "text/csv",
		Content:     strings.NewReader(body),
	}
}

func TestIngestOrchestrator_ProcessFiles(t *testing.T) {
	o, store, index := newTestIngest()
	session := testSession()

	chase := "Date,Description,Amount\n2024-01-15,STARBUCKS #1234,-5.67\n2024-01-16,SALARY DEPOSIT,2500.00\n"
	boa := "Posting Date,Memo,Debit Amt,Credit Amt\n2024-01-20,ATM WITHDRAWAL,45.00,\n"

	result, err := o.ProcessFiles(context.Background(), session, []driving.StatementUpload{
		upload("chase.csv", chase),
		upload("boa.csv", boa),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(result.Statuses))
	}
	for _, st := range result.Statuses {
		if st.Outcome != domain.FileOK {
			t.Errorf("status %s, want ok", st)
		}
	}
	if result.Transactions != 3 {
		t.Errorf("transactions = %d, want 3", result.Transactions)
	}
	if result.Indexed != 3 {
		t.Errorf("indexed = %d, want 3", result.Indexed)
	}

	stored, _ := store.All(context.Background(), session.ID)
	if len(stored) != 3 {
		t.Fatalf("store holds %d rows, want 3", len(stored))
	}
	// Combined batch is date-sorted and derived
	if !stored[0].Date.Before(stored[2].Date) {
		t.Error("stored batch must be date-ordered")
	}
	if stored[0].Type == "" || stored[0].Month == "" {
		t.Error("stored rows must carry derived fields")
	}

	docs := index.Documents(session)
	if len(docs) != 3 {
		t.Fatalf("index holds %d documents, want 3", len(docs))
	}
	if docs[0].ID != "tx_0" {
		t.Errorf("document id = %q, want positional tx_0", docs[0].ID)
	}
}

func TestIngestOrchestrator_BadFilesRecovered(t *testing.T) {
	o, store, _ := newTestIngest()
	session := testSession()

	good := "Date,Description,Amount\n2024-01-15,KEEP ME,10.00\n"
	noColumns := "Balance,Reference\n100,abc\n"
	noRows := "Date,Description,Amount\nnot-a-date,X,junk\n"

	result, err := o.ProcessFiles(context.Background(), session, []driving.StatementUpload{
		upload("good.csv", good),
		upload("broken.csv", noColumns),
		{Name: "img.png", ContentType: "image/png", Content: strings.NewReader("x")},
		upload("empty.csv", noRows),
	})
	if err != nil {
		t.Fatalf("file-level failures must not abort the batch: %v", err)
	}

	want := map[string]domain.FileOutcome{
		"good.csv":   domain.FileOK,
		"broken.csv": domain.FileError,
		"img.png":    domain.FileError,
		"empty.csv":  domain.FileNoValidRows,
	}
	for _, st := range result.Statuses {
		if st.Outcome != want[st.File] {
			t.Errorf("%s outcome = %s, want %s", st.File, st.Outcome, want[st.File])
		}
	}

	stored, _ := store.All(context.Background(), session.ID)
	if len(stored) != 1 || stored[0].Description != "KEEP ME" {
		t.Errorf("store = %+v, want only the good row", stored)
	}
}

func TestIngestOrchestrator_CrossFileDedupe(t *testing.T) {
	o, store, _ := newTestIngest()
	session := testSession()

	a := "Date,Description,Amount\n2024-01-15,STARBUCKS #1234,-5.67\n"
	b := "Date,Description,Amount\n2024-01-15,starbucks #1234,-5.67\n"

	result, err := o.ProcessFiles(context.Background(), session, []driving.StatementUpload{
		upload("a.csv", a),
		upload("b.csv", b),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Transactions != 1 {
		t.Errorf("transactions = %d, want 1 after cross-file dedupe", result.Transactions)
	}
	stored, _ := store.All(context.Background(), session.ID)
	if len(stored) != 1 || stored[0].SourceFile != "a.csv" {
		t.Errorf("dedupe must keep the first file's row, got %+v", stored)
	}
}

func TestIngestOrchestrator_IndexFailureKeepsStore(t *testing.T) {
	o, store, index := newTestIngest()
	session := testSession()
	index.SetFailNextUpsert(true)

	csv := "Date,Description,Amount\n2024-01-15,RENT,-900.00\n"
	result, err := o.ProcessFiles(context.Background(), session, []driving.StatementUpload{
		upload("rent.csv", csv),
	})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("err = %v, want ErrIndexUnavailable", err)
	}
	if result == nil || result.Transactions != 1 {
		t.Fatal("partial result must still report the stored batch")
	}

	count, _ := store.Count(context.Background(), session.ID)
	if count != 1 {
		t.Errorf("store count = %d, want 1 (index failure must not lose the batch)", count)
	}
}

func TestIngestOrchestrator_ReindexIdempotent(t *testing.T) {
	o, _, index := newTestIngest()
	session := testSession()

	csv := "Date,Description,Amount\n2024-01-15,COFFEE,-4.50\n2024-01-16,SALARY,2500.00\n"
	if _, err := o.ProcessFiles(context.Background(), session, []driving.StatementUpload{upload("a.csv", csv)}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	before := index.Documents(session)
	n, err := o.Reindex(context.Background(), session)
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if n != len(before) {
		t.Errorf("reindex count = %d, want %d", n, len(before))
	}

	after := index.Documents(session)
	if len(after) != len(before) {
		t.Fatalf("document count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Text != after[i].Text {
			t.Errorf("document %d changed across rebuild", i)
		}
	}
}

func TestIngestOrchestrator_EmptyBatchClearsIndex(t *testing.T) {
	o, _, index := newTestIngest()
	session := testSession()

	csv := "Date,Description,Amount\n2024-01-15,COFFEE,-4.50\n"
	if _, err := o.ProcessFiles(context.Background(), session, []driving.StatementUpload{upload("a.csv", csv)}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	result, err := o.ProcessFiles(context.Background(), session, nil)
	if err != nil {
		t.Fatalf("empty ingest: %v", err)
	}
	if result.Indexed != 0 {
		t.Errorf("indexed = %d, want 0", result.Indexed)
	}
	count, _ := index.Count(context.Background(), session)
	if count != 0 {
		t.Errorf("index count = %d, want 0 after empty replace", count)
	}
}
