package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type fakeSender struct {
	name   string
	titles []string
	err    error
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakeSender) Name() string { return f.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotify_FiltersByEvent(t *testing.T) {
	sender := &fakeSender{name: "telegram"}
	n := NewNotifier([]Sender{sender}, []string{"cycle_failed"}, testLogger())

	if err := n.Notify(context.Background(), "bucket_empty", "ignored", "body"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 0 {
		t.Errorf("filtered event was delivered: %v", sender.titles)
	}

	if err := n.Notify(context.Background(), "cycle_failed", "delivered", "body"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 1 || sender.titles[0] != "delivered" {
		t.Errorf("delivered titles = %v, want [delivered]", sender.titles)
	}
}

func TestNotify_EmptyEventListAllowsAll(t *testing.T) {
	sender := &fakeSender{name: "discord"}
	n := NewNotifier([]Sender{sender}, nil, testLogger())

	if err := n.Notify(context.Background(), "anything", "t", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.titles) != 1 {
		t.Errorf("delivered %d notifications, want 1", len(sender.titles))
	}
}

func TestNotifyAll_BypassesEventFilter(t *testing.T) {
	sender := &fakeSender{name: "telegram"}
	n := NewNotifier([]Sender{sender}, []string{"cycle_failed"}, testLogger())

	if err := n.NotifyAll(context.Background(), "started", "body"); err != nil {
		t.Fatalf("NotifyAll: %v", err)
	}
	if len(sender.titles) != 1 || sender.titles[0] != "started" {
		t.Errorf("delivered titles = %v, want [started]", sender.titles)
	}
}

func TestNotifyAll_PartialSenderFailure(t *testing.T) {
	broken := &fakeSender{name: "telegram", err: errors.New("bot token revoked")}
	working := &fakeSender{name: "discord"}
	n := NewNotifier([]Sender{broken, working}, nil, testLogger())

	err := n.NotifyAll(context.Background(), "t", "m")
	if err == nil {
		t.Fatal("NotifyAll: expected combined error")
	}
	if !strings.Contains(err.Error(), "telegram") {
		t.Errorf("error %q does not name the failed sender", err)
	}
	// The working sender still got the notification.
	if len(working.titles) != 1 {
		t.Errorf("working sender received %d notifications, want 1", len(working.titles))
	}
}

func TestNotify_NoSendersIsNoop(t *testing.T) {
	n := NewNotifier(nil, nil, testLogger())
	if err := n.Notify(context.Background(), "e", "t", "m"); err != nil {
		t.Fatalf("Notify with no senders: %v", err)
	}
}
