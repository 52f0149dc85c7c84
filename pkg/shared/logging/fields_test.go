package logging

import (
	"errors"
	"testing"
	"time"
)

func TestNewFields(t *testing.T) {
	f := NewFields()
	if f == nil || len(f) != 0 {
		t.Fatalf("NewFields() should be empty, got %v", f)
	}
}

func TestFields_Component(t *testing.T) {
	f := NewFields().Component("pipeline")
	if f["component"] != "pipeline" {
		t.Errorf("Component() = %v", f["component"])
	}
}

func TestFields_Resource(t *testing.T) {
	f := NewFields().Resource("pod", "my-pod")
	if f["resource_type"] != "pod" || f["resource_name"] != "my-pod" {
		t.Errorf("Resource() = %v", f)
	}
}

func TestFields_ResourceWithoutName(t *testing.T) {
	f := NewFields().Resource("pod", "")
	if _, exists := f["resource_name"]; exists {
		t.Error("Resource() should not set resource_name when empty")
	}
}

func TestFields_Duration(t *testing.T) {
	f := NewFields().Duration(150 * time.Millisecond)
	if f["duration_ms"] != int64(150) {
		t.Errorf("Duration() = %v", f["duration_ms"])
	}
}

func TestFields_ErrorNil(t *testing.T) {
	f := NewFields().Error(nil)
	if _, exists := f["error"]; exists {
		t.Error("Error(nil) should not set error field")
	}
}

func TestFields_ErrorSet(t *testing.T) {
	f := NewFields().Error(errors.New("boom"))
	if f["error"] != "boom" {
		t.Errorf("Error() = %v", f["error"])
	}
}

func TestFields_ChainedCalls(t *testing.T) {
	f := NewFields().
		Component("logs").
		Operation("fetch").
		Resource("pod", "p1").
		Duration(100 * time.Millisecond).
		Count(5)

	want := map[string]interface{}{
		"component":     "logs",
		"operation":     "fetch",
		"resource_type": "pod",
		"resource_name": "p1",
		"duration_ms":   int64(100),
		"count":         5,
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("field %s = %v, want %v", k, f[k], v)
		}
	}
}

func TestFields_ToLogrus(t *testing.T) {
	f := NewFields().Component("x").Count(3)
	lf := f.ToLogrus()
	if lf["component"] != "x" || lf["count"] != 3 {
		t.Errorf("ToLogrus() = %v", lf)
	}
}
