package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestPDFArchivePayloadRoundTrip(t *testing.T) {
	task, err := NewPDFArchiveTask(PDFArchivePayload{ResumeID: 3, UserID: 9, UserName: "Ada", CorrelationID: "cid"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypePDFArchive {
		t.Fatalf("type = %q", task.Type())
	}
	p, err := ParsePDFArchivePayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ResumeID != 3 || p.UserID != 9 || p.UserName != "Ada" || p.CorrelationID != "cid" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestParsePDFArchivePayload_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"garbage":     "{",
		"missing ids": `{"resume_id":0,"user_id":1}`,
	} {
		if _, err := ParsePDFArchivePayload(asynq.NewTask(TypePDFArchive, []byte(raw))); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
