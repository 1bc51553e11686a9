package test

import (
	"context"
	"os"

	goRedact "github.com/MrEthical07/goRedact"
	"github.com/MrEthical07/goRedact/detect"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	detector := detect.NewRemote("http://127.0.0.1:9000", nil)

	engine, _ := goRedact.New().
		WithRedis(rdb).
		WithDetector(detector).
		WithMetricsEnabled(true).
		Build()
	_ = engine
}

// ExampleEngine_Redact shows a typical redaction call and structured error handling.
func ExampleEngine_Redact() {
	var engine *goRedact.Engine

	imageData, _ := os.ReadFile("photo.jpg")
	result, err := engine.Redact(context.Background(), "session-id", imageData,
		goRedact.BlurParameters{}, goRedact.RedactOptions{})
	if err != nil {
		_ = err
	}
	_ = result
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goRedact.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}
