package emit

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/martinsuchenak/snmpinfo/internal/model"
	"github.com/martinsuchenak/snmpinfo/internal/storage"
)

func testRecord(target string) *model.DeviceRecord {
	var row model.PortRow
	row.Set("name", "GigabitEthernet1/0/1")
	row.Set("state", "up")
	return &model.DeviceRecord{
		Target: target,
		Attributes: []model.Attribute{
			{Name: "hostname", Value: model.ScalarValue("sw01")},
			{Name: "temperature", Value: model.NestedValue([]model.Entry{{Key: "21", Value: "34"}, {Key: "22", Value: "41"}})},
		},
		Ports: []model.Port{{Index: "1", Row: row}},
	}
}

func TestJSONLines_Emit(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONLines(&buf)

	if err := e.Emit(context.Background(), Meta{}, testRecord("sw-core-01")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	want := `{"target":"sw-core-01","hostname":"sw01","temperature":{"21":"34","22":"41"},"ports":{"1":{"name":"GigabitEthernet1/0/1","state":"up"}}}` + "\n"
	if buf.String() != want {
		t.Errorf("Emit() wrote %q\nwant %q", buf.String(), want)
	}
}

func TestJSONLines_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONLines(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Emit(context.Background(), Meta{}, testRecord("sw"))
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, `{"target":"sw"`) || !strings.HasSuffix(l, "}}}") {
			t.Errorf("interleaved line %q", l)
		}
	}
}

func TestStore_Emit(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	meta := Meta{RunID: "run-1", Group: "core_switches", Kind: model.KindSwitch, CollectedAt: time.Now()}
	if err := NewStore(store).Emit(context.Background(), meta, testRecord("sw-core-01")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	records, err := store.ListRecords(context.Background(), "sw-core-01", 0)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].RunID != "run-1" || records[0].Kind != "switch" || records[0].Group != "core_switches" {
		t.Errorf("record = %+v", records[0])
	}
	if !strings.Contains(string(records[0].Document), `"hostname":"sw01"`) {
		t.Errorf("document = %s", records[0].Document)
	}
}

type failingEmitter struct{ err error }

func (f failingEmitter) Emit(context.Context, Meta, *model.DeviceRecord) error { return f.err }

func TestMulti_Emit(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")

	err := Multi{failingEmitter{boom}, NewJSONLines(&buf)}.Emit(context.Background(), Meta{}, testRecord("sw"))
	if !errors.Is(err, boom) {
		t.Errorf("Emit() error = %v, want boom", err)
	}
	if buf.Len() == 0 {
		t.Error("later emitters must still run after a failure")
	}

	if err := (Multi{}).Emit(context.Background(), Meta{}, testRecord("sw")); err != nil {
		t.Errorf("empty Multi error = %v", err)
	}
}
