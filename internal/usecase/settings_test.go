package usecase

import (
	"testing"

	"caffeine/internal/domain"
)

func TestSettingsStoreLoadFallsBackToDefaults(t *testing.T) {
	repo := &memoryRepo{loadErr: errBoom}
	if got := NewSettingsStore(repo, nil).Load(); got != domain.DefaultSettings() {
		t.Fatalf("load error should yield defaults, got %+v", got)
	}

	invalid := domain.DefaultSettings()
	invalid.Service.IntervalSeconds = 0
	repo = &memoryRepo{settings: invalid}
	if got := NewSettingsStore(repo, nil).Load(); got != domain.DefaultSettings() {
		t.Fatalf("invalid settings should yield defaults, got %+v", got)
	}
}

func TestSettingsStoreLoadKeepsValidSettings(t *testing.T) {
	s := domain.DefaultSettings()
	s.Service.IntervalSeconds = 120
	s.Schedule.Enabled = true
	repo := &memoryRepo{settings: s}
	if got := NewSettingsStore(repo, nil).Load(); got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestSettingsStoreSaveIsBestEffort(t *testing.T) {
	repo := &memoryRepo{saveErr: errBoom}
	store := NewSettingsStore(repo, nil)
	if store.Save(domain.DefaultSettings()) {
		t.Fatal("Save should report failure")
	}
	repo.saveErr = nil
	if !store.Save(domain.DefaultSettings()) {
		t.Fatal("Save should report success")
	}
}

func TestSyncAutostart(t *testing.T) {
	auto := &fakeAutostart{}
	store := NewSettingsStore(&memoryRepo{}, auto)

	store.SyncAutostart(false)
	if len(auto.setCalls) != 0 {
		t.Fatalf("no change expected, got %v", auto.setCalls)
	}
	store.SyncAutostart(true)
	if !auto.enabled || len(auto.setCalls) != 1 {
		t.Fatalf("expected enable, got %v", auto.setCalls)
	}

	auto.err = errBoom
	store.SyncAutostart(false)
	if len(auto.setCalls) != 1 {
		t.Fatalf("query error should skip SetEnabled, got %v", auto.setCalls)
	}
}

func TestSettingsStoreWithoutAutostart(t *testing.T) {
	store := NewSettingsStore(&memoryRepo{}, nil)
	store.SyncAutostart(true)
	if _, err := store.AutostartEnabled(); err != domain.ErrUnsupported {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}
