package tracer

import (
	"context"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/config"
)

func TestInitDisabledRecordsNothing(t *testing.T) {
	tp, err := Init(context.Background(), config.TracingConfig{Enabled: false, ServiceName: "spabook-test"}, "test")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	if span.IsRecording() {
		t.Error("span recorded while tracing is disabled")
	}
}
