package component_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtngo/dtnd/module/component"
	"github.com/dtngo/dtnd/module/irrecoverable"
	"github.com/dtngo/dtnd/module/util"
	"github.com/dtngo/dtnd/utils/unittest"
)

// newWaitingComponent builds a component with two workers that signal ready
// and then idle until shutdown.
func newWaitingComponent() *component.ComponentManager {
	worker := func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
		ready()
		<-ctx.Done()
	}
	return component.NewComponentManagerBuilder().
		AddWorker(worker).
		AddWorker(worker).
		Build()
}

func TestComponentManagerLifecycle(t *testing.T) {
	cm := newWaitingComponent()

	ctx, cancel := context.WithCancel(context.Background())
	signalerCtx, _ := irrecoverable.WithSignaler(ctx)
	cm.Start(signalerCtx)

	unittest.RequireCloseBefore(t, util.AllReady(cm), time.Second, "all workers should become ready")
	unittest.RequireNotClosedWithin(t, cm.ShutdownSignal(), 50*time.Millisecond, "no shutdown was requested yet")

	cancel()
	unittest.RequireCloseBefore(t, cm.ShutdownSignal(), time.Second, "cancellation should signal shutdown")
	unittest.RequireCloseBefore(t, util.AllDone(cm), time.Second, "all workers should shut down")
}

func TestComponentManagerThrowSignalsShutdown(t *testing.T) {
	fatal := errors.New("worker exploded")

	cm := component.NewComponentManagerBuilder().
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			ctx.Throw(fatal)
		}).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(ctx)
	cm.Start(signalerCtx)

	select {
	case err := <-errChan:
		require.ErrorIs(t, err, fatal)
	case <-time.After(time.Second):
		t.Fatal("expected the thrown error to propagate")
	}
	unittest.RequireCloseBefore(t, cm.ShutdownSignal(), time.Second, "a thrown error should signal shutdown")
	unittest.RequireCloseBefore(t, cm.Done(), time.Second, "a thrown error should shut the component down")
}

func TestRunComponentRestartsOnError(t *testing.T) {
	fatal := errors.New("instance failed")

	starts := 0
	factory := func() (component.Component, error) {
		starts++
		return component.NewComponentManagerBuilder().
			AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
				ready()
				ctx.Throw(fatal)
			}).
			Build(), nil
	}

	// restart once, then give up
	var handled []error
	onError := func(err error) component.ErrorHandlingResult {
		handled = append(handled, err)
		if len(handled) == 1 {
			return component.ErrorHandlingRestart
		}
		return component.ErrorHandlingStop
	}

	var err error
	unittest.RequireReturnsBefore(t, func() {
		err = component.RunComponent(context.Background(), factory, onError)
	}, time.Second, "runner should stop once the handler gives up")

	require.ErrorIs(t, err, fatal)
	require.Equal(t, 2, starts)
	require.Len(t, handled, 2)
}

func TestRunComponentStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	factory := func() (component.Component, error) {
		close(started)
		return newWaitingComponent(), nil
	}
	onError := func(err error) component.ErrorHandlingResult {
		t.Errorf("unexpected irrecoverable error: %v", err)
		return component.ErrorHandlingStop
	}

	result := make(chan error, 1)
	go func() {
		result <- component.RunComponent(ctx, factory, onError)
	}()

	unittest.RequireCloseBefore(t, started, time.Second, "component should be started")
	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner should return after cancellation")
	}
}

func TestRunComponentFactoryFailure(t *testing.T) {
	broken := errors.New("bad wiring")
	factory := func() (component.Component, error) {
		return nil, broken
	}
	onError := func(err error) component.ErrorHandlingResult {
		t.Errorf("factory failures must not reach the handler: %v", err)
		return component.ErrorHandlingStop
	}

	err := component.RunComponent(context.Background(), factory, onError)
	require.ErrorIs(t, err, broken)
}
