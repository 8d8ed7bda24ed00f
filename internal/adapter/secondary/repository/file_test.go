package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"

	"caffeine/internal/domain"
)

const testPath = "/cfg/caffeine/settings.json"

func newMemRepo(t *testing.T) (*FileRepository, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	repo, err := NewFileRepositoryFs(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	return repo, fs
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	repo, _ := newMemRepo(t)
	got, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != domain.DefaultSettings() {
		t.Fatalf("got %+v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, fs := newMemRepo(t)
	want := domain.Settings{
		Schedule: domain.ScheduleConfig{
			Enabled:    true,
			Start:      domain.MustTimeOfDay(22, 0),
			End:        domain.MustTimeOfDay(6, 30),
			ActiveDays: domain.NewWeekdaySet(time.Saturday, time.Sunday, time.Wednesday),
		},
		Service:         domain.ServiceConfig{IntervalSeconds: 120, KeepDisplayOn: false},
		StartWithSystem: false,
	}

	if err := repo.Save(want); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fs, testPath+".tmp"); ok {
		t.Fatal("tmp file should be renamed away")
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSavedFileSchema(t *testing.T) {
	repo, fs := newMemRepo(t)
	if err := repo.Save(domain.DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["startTime"] != "09:00" || raw["endTime"] != "18:00" {
		t.Fatalf("times: %v %v", raw["startTime"], raw["endTime"])
	}
	if raw["pingIntervalSeconds"].(float64) != 30 {
		t.Fatalf("interval: %v", raw["pingIntervalSeconds"])
	}
	days := raw["activeDays"].([]any)
	if len(days) != 5 || days[0] != "Monday" {
		t.Fatalf("days: %v", days)
	}
	for _, k := range []string{"scheduleEnabled", "startWithSystem", "keepDisplayOn"} {
		if _, ok := raw[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	repo, fs := newMemRepo(t)
	if err := afero.WriteFile(fs, testPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Load(); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestLoadInvalidIntervalFails(t *testing.T) {
	repo, fs := newMemRepo(t)
	if err := afero.WriteFile(fs, testPath, []byte(`{"pingIntervalSeconds": 45}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Load(); err == nil {
		t.Fatal("expected error for unsupported interval")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	repo, fs := newMemRepo(t)
	body := `{"scheduleEnabled": true, "startTime": "08:15:00"}`
	if err := afero.WriteFile(fs, testPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := domain.DefaultSettings()
	want.Schedule.Enabled = true
	want.Schedule.Start = domain.MustTimeOfDay(8, 15)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNewFileRepositoryRequiresPath(t *testing.T) {
	if _, err := NewFileRepositoryFs(afero.NewMemMapFs(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
