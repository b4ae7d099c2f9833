package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	name    string
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
	stops   *stopLog
}

type stopLog struct {
	mu    sync.Mutex
	names []string
}

func (l *stopLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.stops != nil {
		m.stops.add(m.name)
	}
}

func runAsync(ctx context.Context, lc *Lifecycle) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycle_StopsInReverseOrderOnCancel(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	stops := &stopLog{}
	svc1 := &mockService{name: "driver", stops: stops}
	svc2 := &mockService{name: "http", stops: stops}
	lc.Add("driver", svc1)
	lc.Add("http", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, lc)

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitDone(t, done))
	assert.Equal(t, []string{"http", "driver"}, stops.names)
}

func TestLifecycle_ServiceFailureIsReturned(t *testing.T) {
	lc := NewLifecycle(zap.NewNop())
	boom := errors.New("address in use")
	healthy := &mockService{name: "driver"}
	lc.Add("driver", healthy)
	lc.Add("http", &mockService{name: "http", startFn: func() error { return boom }})

	err := waitDone(t, runAsync(context.Background(), lc))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service http")
	assert.True(t, healthy.stopped.Load())
}

func TestLifecycle_CleanExitIsNotAFailure(t *testing.T) {
	lc := NewLifecycle(zap.NewNop())
	lc.Add("oneshot", &mockService{startFn: func() error { return nil }})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, waitDone(t, runAsync(ctx, lc)))
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)
}

func TestHTTPService_ServesUntilStopped(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	svc := NewHTTPService(ln, h, time.Second, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start() }()

	resp, err := http.Get("http://" + svc.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	svc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("http service did not stop")
	}
}

func TestHTTPService_OnShutdownRunsOnStop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	svc := NewHTTPService(ln, http.NotFoundHandler(), time.Second, zap.NewNop())

	hooked := make(chan struct{})
	svc.OnShutdown(func() { close(hooked) })

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start() }()
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + svc.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	svc.Stop()
	select {
	case <-hooked:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown hook did not run")
	}
	assert.NoError(t, <-errCh)
}
