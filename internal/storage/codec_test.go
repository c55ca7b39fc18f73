package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunCodecRoundTrip(t *testing.T) {
	input := sampleRun("run-1", "2026-01-02T00:00:00Z")
	encoded, err := EncodeRun(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(input, decoded); diff != "" {
		t.Fatalf("decoded run mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCodecVersionMismatch(t *testing.T) {
	input := sampleRun("run-1", "2026-01-02T00:00:00Z")
	input.CodecVersion = CurrentCodecVersion + 1
	encoded, err := EncodeRun(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeRun(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}

func TestDecodeRunFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("run_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	run, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if run.ID != "run-fixture-1" || run.PopulationSize != 1000 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.FinalStats.Recovered != 95 || run.FinalStats.Total() != 1000 {
		t.Fatalf("unexpected final stats: %+v", run.FinalStats)
	}
}

func TestSeriesAndTransmissionsCodecRoundTrip(t *testing.T) {
	series := sampleSeries()
	encoded, err := EncodeSeries(series)
	if err != nil {
		t.Fatalf("encode series: %v", err)
	}
	decodedSeries, err := DecodeSeries(encoded)
	if err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if diff := cmp.Diff(series, decodedSeries); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}

	records := sampleTransmissions()
	encoded, err = EncodeTransmissions(records)
	if err != nil {
		t.Fatalf("encode transmissions: %v", err)
	}
	decodedRecords, err := DecodeTransmissions(encoded)
	if err != nil {
		t.Fatalf("decode transmissions: %v", err)
	}
	if diff := cmp.Diff(records, decodedRecords); diff != "" {
		t.Fatalf("transmissions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSeriesRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeSeries([]byte(`{"day": 1}`)); err == nil {
		t.Fatal("expected decode error for non-array payload")
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}
