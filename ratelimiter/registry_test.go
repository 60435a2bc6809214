package ratelimiter

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	// Test Get on empty registry
	if _, ok := registry.Get("non-existent"); ok {
		t.Error("expected miss for non-existent model")
	}

	// Test Set and Get
	limiter := New(100, 10)
	modelName := "test-model"
	registry.Set(modelName, limiter)

	retrieved, ok := registry.Get(modelName)
	if !ok {
		t.Fatal("expected limiter to be registered")
	}
	if retrieved != limiter {
		t.Error("retrieved limiter does not match set limiter")
	}

	// Test Overwrite
	limiter2 := New(200, 20)
	registry.Set(modelName, limiter2)
	retrieved2, _ := registry.Get(modelName)
	if retrieved2 != limiter2 {
		t.Error("retrieved limiter does not match overwritten limiter")
	}

	// Test removal
	registry.Set(modelName, nil)
	if _, ok := registry.Get(modelName); ok {
		t.Error("expected limiter to be removed")
	}
}
