package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	if err := s.Put(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}
	v[0] = 'z'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}

func TestStore_FailPut(t *testing.T) {
	t.Parallel()

	s := NewStore()
	boom := errors.New("quota exceeded")
	s.FailPut = boom
	if err := s.Put(context.Background(), "k", []byte("v")); !errors.Is(err, boom) {
		t.Fatalf("Put err=%v, want %v", err, boom)
	}
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Fatalf("expected no value after failed Put")
	}
}
