package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
	"github.com/tesla-electricidad/intake-engine/internal/leads"
	"github.com/tesla-electricidad/intake-engine/internal/quotes"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

type recordingEmail struct {
	sent []EmailMessage
	err  error
}

func (r *recordingEmail) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

type recordingWhatsApp struct {
	to   []string
	body []string
	err  error
}

func (r *recordingWhatsApp) SendMessage(ctx context.Context, to, body string) error {
	r.to = append(r.to, to)
	r.body = append(r.body, body)
	return r.err
}

func sampleLead() *leads.Lead {
	return &leads.Lead{
		ID:            "lead-1",
		Name:          "Ana Torres",
		TaxID:         "20123456789",
		Phone:         "+51987654321",
		BusinessType:  "industrial",
		AreaSqMeters:  100,
		ServiceIntent: intent.ServiceGrounding,
	}
}

func TestNotifyNewLeadSendsBothChannels(t *testing.T) {
	email := &recordingEmail{}
	wa := &recordingWhatsApp{}
	svc := NewService(email, wa, "ops@tesla-electricidad.pe", logging.New("error"))

	svc.NotifyNewLead(context.Background(), sampleLead(), &quotes.Quote{TotalAmount: 3000, ValidityDays: 30})

	if len(email.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(email.sent))
	}
	if email.sent[0].To != "ops@tesla-electricidad.pe" {
		t.Fatalf("email to = %q", email.sent[0].To)
	}
	if !strings.Contains(email.sent[0].Body, "20123456789") {
		t.Fatalf("email body missing RUC: %q", email.sent[0].Body)
	}
	if len(wa.to) != 1 || wa.to[0] != "+51987654321" {
		t.Fatalf("whatsapp to = %v", wa.to)
	}
	if !strings.Contains(wa.body[0], "3000.00") {
		t.Fatalf("welcome missing quote amount: %q", wa.body[0])
	}
}

func TestNotifyNewLeadSwallowsSendErrors(t *testing.T) {
	email := &recordingEmail{err: errors.New("boom")}
	wa := &recordingWhatsApp{err: errors.New("boom")}
	svc := NewService(email, wa, "ops@tesla-electricidad.pe", logging.New("error"))

	// Must not panic or propagate.
	svc.NotifyNewLead(context.Background(), sampleLead(), nil)

	if len(email.sent) != 1 || len(wa.to) != 1 {
		t.Fatal("both channels should still be attempted")
	}
}

func TestNotifyNewLeadWithoutSendersIsNoOp(t *testing.T) {
	svc := NewService(nil, nil, "", logging.New("error"))
	svc.NotifyNewLead(context.Background(), sampleLead(), nil)
	svc.NotifyNewLead(context.Background(), nil, nil)
}

func TestTwilioWhatsAppSenderPostsForm(t *testing.T) {
	var gotPath, gotTo, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	sender := NewTwilioWhatsAppSender("AC123", "token", "+51911111111", logging.New("error"))
	sender.baseURL = srv.URL

	err := sender.SendMessage(context.Background(), "+51987654321", "hola")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotTo != "whatsapp:+51987654321" || gotFrom != "whatsapp:+51911111111" {
		t.Fatalf("to = %q from = %q", gotTo, gotFrom)
	}
}

func TestTwilioWhatsAppSenderDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"invalid number","status":400}`))
	}))
	defer srv.Close()

	sender := NewTwilioWhatsAppSender("AC123", "token", "+51911111111", logging.New("error"))
	sender.baseURL = srv.URL

	err := sender.SendMessage(context.Background(), "+51987654321", "hola")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "21211") {
		t.Fatalf("error should carry the provider code: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestTwilioWhatsAppSenderValidation(t *testing.T) {
	sender := NewTwilioWhatsAppSender("", "", "+51911111111", logging.New("error"))
	if err := sender.SendMessage(context.Background(), "+51987654321", "hola"); err == nil {
		t.Fatal("missing credentials must fail")
	}

	sender = NewTwilioWhatsAppSender("AC123", "token", "+51911111111", logging.New("error"))
	if err := sender.SendMessage(context.Background(), "", "hola"); err == nil {
		t.Fatal("missing recipient must fail")
	}
	if err := sender.SendMessage(context.Background(), "+51987654321", "  "); err == nil {
		t.Fatal("empty body must fail")
	}
}
