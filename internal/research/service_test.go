package research

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-intelligence/internal/models"
)

func TestServiceClient_GenerateReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ResearchPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"Detailed report sent to a@b.com","reportContent":"<div>...</div>","email":"a@b.com"}`))
	}))
	defer srv.Close()

	client := NewServiceClient(srv.URL+"/", time.Second)
	resp, err := client.GenerateReport(context.Background(), models.ResearchRequest{Query: "q", Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, &models.ResearchResponse{
		Success:       true,
		Message:       "Detailed report sent to a@b.com",
		ReportContent: "<div>...</div>",
		Email:         "a@b.com",
	}, resp)
}

func TestServiceClient_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"not found", http.StatusNotFound, ``},
		{"malformed body", http.StatusOK, `<html>not json</html>`},
		{"empty body", http.StatusOK, ``},
		{"service reported failure", http.StatusOK, `{"success":false,"message":"quota exceeded"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			resp, err := NewServiceClient(srv.URL, time.Second).
				GenerateReport(context.Background(), models.ResearchRequest{Query: "q", Email: "a@b.com"})
			assert.Nil(t, resp)

			var te *TransportError
			require.True(t, errors.As(err, &te), "got %v", err)
			assert.Equal(t, tc.status, te.StatusCode)
			assert.Equal(t, ResearchPath, te.Op)
		})
	}
}

func TestServiceClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewServiceClient(url, time.Second).
		GenerateReport(context.Background(), models.ResearchRequest{Query: "q", Email: "a@b.com"})

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestServiceClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewServiceClient(srv.URL, 50*time.Millisecond).
		GenerateReport(context.Background(), models.ResearchRequest{Query: "q", Email: "a@b.com"})
	assert.True(t, IsTransport(err))
}
