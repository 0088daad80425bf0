package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLs(t *testing.T) {
	tests := []struct {
		issuer string
		want   Endpoints
	}{
		{
			issuer: "https://app.example.com/orders?x=1",
			want: Endpoints{
				Primary:   "wss://app.example.com/epaper",
				Secondary: "wss://app.example.com/epaper2",
				Base:      "wss://app.example.com",
			},
		},
		{
			issuer: "http://localhost:8080/",
			want: Endpoints{
				Primary:   "ws://localhost:8080/epaper",
				Secondary: "ws://localhost:8080/epaper2",
				Base:      "ws://localhost",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.issuer, func(t *testing.T) {
			got, err := URLs(tt.issuer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLsRequiresHost(t *testing.T) {
	_, err := URLs("/relative/path")
	assert.Error(t, err)
}
