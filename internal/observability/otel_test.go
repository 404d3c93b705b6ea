package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseOTLPProtocol(t *testing.T) {
	tests := []struct {
		input    string
		expected otlpProtocol
		wantErr  bool
	}{
		{"", otlpProtocolGRPC, false},
		{"grpc", otlpProtocolGRPC, false},
		{"GRPC", otlpProtocolGRPC, false},
		{"http", otlpProtocolHTTP, false},
		{"http/protobuf", otlpProtocolHTTP, false},
		{" http/protobuf ", otlpProtocolHTTP, false},
		{"quic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseOTLPProtocol(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTraceSamplerForRatio(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), traceSamplerForRatio(0).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), traceSamplerForRatio(-1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), traceSamplerForRatio(1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), traceSamplerForRatio(2).Description())
	assert.Contains(t, traceSamplerForRatio(0.25).Description(), "TraceIDRatioBased")
}

func TestIsHTTPEndpointURL(t *testing.T) {
	assert.True(t, isHTTPEndpointURL("http://collector:4318"))
	assert.True(t, isHTTPEndpointURL("https://collector:4318"))
	assert.False(t, isHTTPEndpointURL("collector:4318"))
}
