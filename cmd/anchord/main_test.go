package main

import (
	"context"
	"testing"

	"github.com/anchorvcs/anchor/internal/authtoken"
	"github.com/anchorvcs/anchor/internal/config"
)

func TestNewRefreshStoreDefaultsToJSONFile(t *testing.T) {
	cfg := &config.Config{RootDir: t.TempDir()}

	store, err := newRefreshStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newRefreshStore: %v", err)
	}
	if _, ok := store.(*authtoken.JSONFileStore); !ok {
		t.Fatalf("expected *authtoken.JSONFileStore with no RefreshStoreDSN set, got %T", store)
	}
}
