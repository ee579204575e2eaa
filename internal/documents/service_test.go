package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/facts"
	"dealflow-backend/internal/queue"
	"dealflow-backend/internal/stages"
)

type captureQueue struct {
	sent []queue.Message
}

func (q *captureQueue) Send(ctx context.Context, msg queue.Message) error {
	q.sent = append(q.sent, msg)
	return nil
}

func newServiceFixture(t *testing.T, content string, replies ...string) (*Service, *captureQueue, *deals.Service, *stages.Service) {
	t.Helper()
	stageSvc := stages.NewService(stages.NewMemoryRepo())
	dealSvc := deals.NewService(deals.NewMemoryRepo(), deals.NewMemoryActivityRepo(), stageSvc)
	q := &captureQueue{}
	svc := &Service{
		Repo:   NewMemoryRepo(),
		Deals:  dealSvc,
		Stages: stageSvc,
		Store:  memStore{content: []byte(content)},
		Queue:  q,
		Facts:  facts.NewExtractor(&scriptedLLM{replies: replies}, "gpt-4o"),
	}
	return svc, q, dealSvc, stageSvc
}

func TestUploadEnqueuesProcessing(t *testing.T) {
	svc, q, dealSvc, _ := newServiceFixture(t, "hello world")
	deal, err := dealSvc.Create(context.Background(), deals.Deal{Name: "Project Atlas"})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	doc, err := svc.Upload(context.Background(), deal.ID, "cim.txt", "", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Category != "general" {
		t.Fatalf("category = %q, want default", doc.Category)
	}
	if doc.ObjectPath == "" {
		t.Fatal("object path not recorded")
	}

	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
	msg := q.sent[0]
	if msg.DocumentID != doc.ID || msg.DealID != deal.ID {
		t.Fatalf("queued message references wrong ids: %+v", msg)
	}
	if msg.RequestID == "" || msg.Version != 1 {
		t.Fatalf("queued message missing envelope fields: %+v", msg)
	}

	acts, _ := dealSvc.ListActivities(context.Background(), deal.ID)
	found := false
	for _, a := range acts {
		if a.Type == deals.ActivityDocumentUploaded && strings.Contains(a.Description, `"cim.txt"`) {
			found = true
		}
	}
	if !found {
		t.Fatal("document_uploaded activity missing")
	}
}

func TestUploadUnknownDeal(t *testing.T) {
	svc, q, _, _ := newServiceFixture(t, "x")
	_, err := svc.Upload(context.Background(), "missing", "a.txt", "", strings.NewReader("x"))
	if !errors.Is(err, deals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(q.sent) != 0 {
		t.Fatal("nothing should be enqueued for an unknown deal")
	}
}

func TestCreateFromDocumentBuildsDealInFirstStage(t *testing.T) {
	svc, q, dealSvc, stageSvc := newServiceFixture(t,
		"Teaser for Orion Robotics, valuation 120M, based in Germany.",
		`{"name": "Orion Robotics Acquisition", "targetCompany": "Orion Robotics", "geography": "Germany", "valuation": 120}`,
	)
	seeded, _, err := stageSvc.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed stages: %v", err)
	}

	result, err := svc.CreateFromDocument(context.Background(), CreateFromDocumentRequest{
		ObjectPath: "incoming/teaser.txt",
		FileName:   "teaser.txt",
	})
	if err != nil {
		t.Fatalf("CreateFromDocument: %v", err)
	}

	if result.Deal.Name != "Orion Robotics Acquisition" {
		t.Fatalf("deal name = %q", result.Deal.Name)
	}
	if result.Deal.StageID == nil || *result.Deal.StageID != seeded[0].ID {
		t.Fatalf("deal should land in the first pipeline stage")
	}
	if result.Deal.Valuation == nil || *result.Deal.Valuation != 120 {
		t.Fatalf("valuation not carried over: %v", result.Deal.Valuation)
	}
	if result.Document.DealID != result.Deal.ID || result.Document.Name != "teaser.txt" {
		t.Fatalf("document not attached: %+v", result.Document)
	}
	if result.Extracted.TargetCompany == nil || *result.Extracted.TargetCompany != "Orion Robotics" {
		t.Fatalf("extracted profile incomplete: %+v", result.Extracted)
	}

	if len(q.sent) != 1 || q.sent[0].DocumentID != result.Document.ID {
		t.Fatalf("document processing not enqueued: %+v", q.sent)
	}

	acts, _ := dealSvc.ListActivities(context.Background(), result.Deal.ID)
	var types []string
	for _, a := range acts {
		types = append(types, a.Type)
	}
	if !containsType(types, deals.ActivityDealCreated) || !containsType(types, deals.ActivityDocumentUploaded) {
		t.Fatalf("expected deal_created and document_uploaded activities, got %v", types)
	}
}

func TestCreateFromDocumentFallsBackToFileName(t *testing.T) {
	svc, _, _, _ := newServiceFixture(t, "short note", `{"geography": "US"}`)

	result, err := svc.CreateFromDocument(context.Background(), CreateFromDocumentRequest{
		ObjectPath: "incoming/acme-lbo.txt",
		FileName:   "acme-lbo.txt",
	})
	if err != nil {
		t.Fatalf("CreateFromDocument: %v", err)
	}
	if result.Deal.Name != "acme-lbo" {
		t.Fatalf("deal name should fall back to the file name, got %q", result.Deal.Name)
	}
}

func TestCreateFromDocumentMalformedJSONIsUnreadable(t *testing.T) {
	svc, _, dealSvc, _ := newServiceFixture(t, "teaser body", `{"name": "Broken",}`)

	_, err := svc.CreateFromDocument(context.Background(), CreateFromDocumentRequest{
		ObjectPath: "incoming/broken.txt",
		FileName:   "broken.txt",
	})
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected ErrUnreadableDocument for malformed JSON, got %v", err)
	}
	all, _ := dealSvc.List(context.Background(), deals.ListFilter{})
	if len(all) != 0 {
		t.Fatal("no deal should be created from malformed extraction output")
	}
}

func TestCreateFromDocumentUnreadable(t *testing.T) {
	svc, q, dealSvc, _ := newServiceFixture(t, "scanned noise", "the model rambled with no structure")

	_, err := svc.CreateFromDocument(context.Background(), CreateFromDocumentRequest{
		ObjectPath: "incoming/scan.txt",
		FileName:   "scan.txt",
	})
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected ErrUnreadableDocument, got %v", err)
	}

	all, _ := dealSvc.List(context.Background(), deals.ListFilter{})
	if len(all) != 0 {
		t.Fatal("no deal should be created from an unreadable document")
	}
	if len(q.sent) != 0 {
		t.Fatal("nothing should be enqueued")
	}
}

func containsType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
