package session

import (
	"bytes"
	"strings"
	"testing"

	"go-medical-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

func TestNotificationFeedSince(t *testing.T) {
	feed := NewNotificationFeed(3)
	if feed.Last() != 0 {
		t.Fatalf("Last() = %d on an empty feed", feed.Last())
	}

	for i := 0; i < 5; i++ {
		feed.Notify(logoutSuccess())
	}

	if feed.Last() != 5 {
		t.Errorf("Last() = %d, want 5", feed.Last())
	}

	all := feed.Since(0)
	if len(all) != 3 || all[0].Seq != 3 || all[2].Seq != 5 {
		t.Fatalf("Since(0) kept %+v", all)
	}
	if got := feed.Since(4); len(got) != 1 || got[0].Seq != 5 {
		t.Errorf("Since(4) = %+v", got)
	}
	if got := feed.Since(5); len(got) != 0 {
		t.Errorf("Since(5) = %+v", got)
	}
}

func TestMultiNotifierFansOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	MultiNotifier{first, second}.Notify(loginSuccess("Jane"))

	if first.last().Kind != entity.NotifyLoginSuccess || second.last().Kind != entity.NotifyLoginSuccess {
		t.Error("expected both notifiers to receive the notification")
	}
}

func TestLogNotifierLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	notifier := NewLogNotifier(log)
	notifier.Notify(loginSuccess("Jane"))
	notifier.Notify(profileNotFound())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[0], "Welcome back, Jane!") {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"warning"`) || !strings.Contains(lines[1], string(entity.NotifyProfileNotFound)) {
		t.Errorf("unexpected second line: %s", lines[1])
	}
}
