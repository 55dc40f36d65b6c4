package appmanager

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type fakeService struct {
	name     string
	startErr error
	log      *[]string
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start "+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop "+f.name)
	return nil
}

func TestLoadServiceSequence_SortsByStartOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	yml := `services:
  - name: gateway
    start_order: 4
    config:
      port: 8081
  - name: logger
    start_order: 1
    config:
      folder_path: ./logs
  - name: cancellations
    start_order: 2
    config:
      port: 4143
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	seq, err := LoadServiceSequence(path)
	if err != nil {
		t.Fatalf("LoadServiceSequence: %v", err)
	}
	var names []string
	for _, s := range seq {
		names = append(names, s.Name)
	}
	if want := []string{"logger", "cancellations", "gateway"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("order want=%v got=%v", want, names)
	}
	if seq[2].Config["port"] != 8081 {
		t.Fatalf("port want=8081 got=%v", seq[2].Config["port"])
	}
}

func TestAutoRegisterServices(t *testing.T) {
	am := NewAppManager(NewShared())
	defer am.shared.Events.Stop()

	am.AutoRegisterServices([]ServiceConfig{
		{Name: "cancellations", StartOrder: 1},
		{Name: "cron", StartOrder: 2},
		{Name: "gateway", StartOrder: 3},
		{Name: "fx", StartOrder: 4},
	})
	if len(am.services) != 3 {
		t.Fatalf("want 3 known services registered got %d", len(am.services))
	}
	if am.GetServiceByName("cron") == nil || am.GetServiceByName("fx") != nil {
		t.Fatalf("GetServiceByName returned the wrong services")
	}
}

func TestStartAll_RollsBackOnFailure(t *testing.T) {
	var log []string
	am := NewAppManager(nil)
	am.RegisterService(&fakeService{name: "a", log: &log})
	am.RegisterService(&fakeService{name: "b", log: &log})
	am.RegisterService(&fakeService{name: "c", log: &log, startErr: errors.New("port in use")})

	if err := am.StartAll(); err == nil {
		t.Fatalf("want start error")
	}
	want := []string{"start a", "start b", "start c", "stop b", "stop a"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("want=%v got=%v", want, log)
	}
}

func TestStopAll_ReverseOrder(t *testing.T) {
	var log []string
	am := NewAppManager(nil)
	am.RegisterService(&fakeService{name: "a", log: &log})
	am.RegisterService(&fakeService{name: "b", log: &log})

	if err := am.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := am.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	want := []string{"start a", "start b", "stop b", "stop a"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("want=%v got=%v", want, log)
	}
}
