package module_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtngo/dtnd/module"
)

// TestNotifierNoNotificationsInitially verifies that a fresh notifier has no
// pending notification.
func TestNotifierNoNotificationsInitially(t *testing.T) {
	notifier := module.NewNotifier()
	select {
	case <-notifier.Channel():
		t.Fatal("fresh notifier should not notify")
	default:
	}
}

// TestNotifierCoalescesNotifications verifies that many notifications without
// an intermediate read collapse into a single pending one.
func TestNotifierCoalescesNotifications(t *testing.T) {
	notifier := module.NewNotifier()
	for i := 0; i < 10; i++ {
		notifier.Notify()
	}

	<-notifier.Channel()

	select {
	case <-notifier.Channel():
		t.Fatal("only one notification should be pending")
	case <-time.After(10 * time.Millisecond):
	}
}

// TestNotifierConcurrentUse verifies that concurrent producers never block
// and a consumer always observes a notification for outstanding work.
func TestNotifierConcurrentUse(t *testing.T) {
	notifier := module.NewNotifier()

	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		go func() {
			defer wg.Done()
			notifier.Notify()
		}()
	}
	wg.Wait()

	select {
	case <-notifier.Channel():
	default:
		t.Fatal("a notification should be pending")
	}
	require.Len(t, notifier.Channel(), 0)
}
