package factory

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type sample struct{ A int }

type sampleConf struct {
	A int `json:"a"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
	if got := reg.Names(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestDecodeWeakTypesAndDurations(t *testing.T) {
	var c struct {
		Timeout time.Duration `json:"timeout"`
		Port    int           `json:"port"`
	}
	if err := Decode(map[string]any{"timeout": "3s", "port": "9090"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Timeout != 3*time.Second || c.Port != 9090 {
		t.Fatalf("unexpected decode result %+v", c)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	var c sampleConf
	err := Decode(map[string]any{"a": 1, "bukcet": "x"}, &c)
	if err == nil || !strings.Contains(err.Error(), "bukcet") {
		t.Fatalf("expected unused key error, got %v", err)
	}
}

func TestCreateWrapsFactoryError(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("bad", func(map[string]any) (int, error) { return 0, errors.New("boom") }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := reg.Create(ModuleConfig{Type: "bad"}); err == nil || err.Error() != "bad: boom" {
		t.Fatalf("unexpected error %v", err)
	}
}
