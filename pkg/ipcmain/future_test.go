package ipcmain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFuture_SettlesOnce(t *testing.T) {
	f := NewFuture[int]()
	f.Resolve(1)
	f.Resolve(2)
	f.Reject(errors.New("late"))

	v, err := f.Wait(context.Background())
	if err != nil || v != 1 {
		t.Errorf("ipcmain:future_test - Wait() = %d, %v; want 1, nil", v, err)
	}
}

func TestFuture_RejectNil(t *testing.T) {
	f := Rejected[string](nil)
	if _, err := f.Wait(context.Background()); err == nil {
		t.Error("ipcmain:future_test - Reject(nil) produced a resolved future")
	}
}

func TestFuture_WaitContext(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ipcmain:future_test - err = %v, want DeadlineExceeded", err)
	}
	select {
	case <-f.Done():
		t.Error("ipcmain:future_test - future settled without Resolve")
	default:
	}
}

func TestGo(t *testing.T) {
	v, err := Go(func() (string, error) { return "ok", nil }).Wait(context.Background())
	if err != nil || v != "ok" {
		t.Errorf("ipcmain:future_test - Go resolved = %q, %v", v, err)
	}

	boom := errors.New("boom")
	if _, err := Go(func() (string, error) { return "", boom }).Wait(context.Background()); !errors.Is(err, boom) {
		t.Errorf("ipcmain:future_test - Go rejected err = %v, want boom", err)
	}

	_, err = Go(func() (string, error) { panic("kaput") }).Wait(context.Background())
	if err == nil || !strings.Contains(err.Error(), "kaput") {
		t.Errorf("ipcmain:future_test - Go panic err = %v", err)
	}
}

func TestFuture_ZeroValue(t *testing.T) {
	var resolved Future[int]
	resolved.Resolve(7)
	if v, err := resolved.Wait(context.Background()); err != nil || v != 7 {
		t.Errorf("ipcmain:future_test - zero future Resolve: Wait() = %d, %v", v, err)
	}

	rejected := new(Future[int])
	rejected.Reject(errors.New("nope"))
	select {
	case <-rejected.Done():
	default:
		t.Error("ipcmain:future_test - zero future Reject did not settle")
	}

	var pending Future[string]
	go pending.Resolve("late")
	if v, err := pending.Wait(context.Background()); err != nil || v != "late" {
		t.Errorf("ipcmain:future_test - zero future Wait() = %q, %v", v, err)
	}
}

func TestGo_PanicIsPanicError(t *testing.T) {
	_, err := Go(func() (int, error) { panic("kaput") }).Wait(context.Background())
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("ipcmain:future_test - err = %v, want *PanicError", err)
	}
	if pe.Value != "kaput" || len(pe.Stack) == 0 {
		t.Errorf("ipcmain:future_test - PanicError = %v, stack %d bytes", pe.Value, len(pe.Stack))
	}
}
