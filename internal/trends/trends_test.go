package trends

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"infocommander/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
	gotURL     string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.gotURL = req.URL.String()
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/trends.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestFetch(t *testing.T) {
	xml := loadFixture(t)

	tests := []struct {
		name      string
		transport *mockTransport
		want      []model.Trend
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: xml, statusCode: 200},
			want: []model.Trend{
				{Title: "台風動向", Traffic: "500,000+"},
				{Title: "NBA Finals", Traffic: "200,000+"},
				{Title: "股市", Traffic: "N/A"},
			},
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid xml",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport)
			got, err := f.Fetch(context.Background(), "TW")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("trends mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchBuildsGeoURL(t *testing.T) {
	transport := &mockTransport{body: loadFixture(t), statusCode: 200}
	f := New(transport)

	if _, err := f.Fetch(context.Background(), "JP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://trends.google.com/trends/trendingsearches/daily/rss?geo=JP"
	if diff := cmp.Diff(want, transport.gotURL); diff != "" {
		t.Errorf("url mismatch (-want +got):\n%s", diff)
	}
}
