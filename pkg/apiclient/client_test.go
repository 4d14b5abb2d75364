package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knugget/coordinator/pkg/apiclient"
	"github.com/knugget/coordinator/pkg/saves"
	"github.com/knugget/coordinator/pkg/session"
)

func newClient(t *testing.T, handler http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty base URL", func(t *testing.T) {
		t.Parallel()
		_, err := apiclient.New(apiclient.Config{})
		assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		t.Parallel()
		_, err := apiclient.New(apiclient.Config{BaseURL: "ftp://example.com/api"})
		assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)
	})
}

func TestClient_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("returns candidate on success", func(t *testing.T) {
		t.Parallel()
		expiresAt := time.Now().Add(24 * time.Hour).UnixMilli()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/refresh", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "rt-1", body["refreshToken"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"token":        "at-2",
					"refreshToken": "rt-2",
					"expiresAt":    expiresAt,
					"user": map[string]any{
						"id": "u1", "name": "Ann", "email": "ann@example.com",
						"credits": 7, "plan": "premium",
					},
				},
			})
		}))

		candidate, err := client.Refresh(context.Background(), "rt-1")
		require.NoError(t, err)
		assert.Equal(t, "at-2", candidate.AccessToken)
		assert.Equal(t, "rt-2", candidate.RefreshToken)
		assert.Equal(t, "u1", candidate.User.ID)
		assert.Equal(t, session.PlanPremium, candidate.User.Plan)
		assert.Equal(t, time.UnixMilli(expiresAt), candidate.ExpiresAt)
		assert.NoError(t, candidate.Validate())
	})

	t.Run("rejected refresh token is terminal", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"refresh token expired"}`))
		}))

		_, err := client.Refresh(context.Background(), "rt-stale")
		require.ErrorIs(t, err, session.ErrRefreshRejected)
		assert.Contains(t, err.Error(), "refresh token expired")
	})

	t.Run("server failure is transient", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.Refresh(context.Background(), "rt-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrRefreshRejected)
	})
}

func TestClient_SubmitRecord(t *testing.T) {
	t.Parallel()

	t.Run("routes by source kind and returns server fields", func(t *testing.T) {
		t.Parallel()
		var gotPath, gotAuth string
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"srv-9","savedAt":"2026-08-30T10:00:00Z"}}`))
		}))

		record := saves.NewRecord(saves.Payload{Author: "Ann", Content: "post"}, saves.SourceLinkedIn, time.Now())
		remote, err := client.SubmitRecord(context.Background(), "at-1", record)
		require.NoError(t, err)
		assert.Equal(t, "/linkedin/posts", gotPath)
		assert.Equal(t, "Bearer at-1", gotAuth)
		assert.Equal(t, "srv-9", remote.ID)
		assert.False(t, remote.SavedAt.IsZero())
	})

	t.Run("youtube records go to the summary endpoint", func(t *testing.T) {
		t.Parallel()
		var gotPath string
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"srv-1"}}`))
		}))

		record := saves.NewRecord(saves.Payload{SourceID: "vid-1", Title: "Talk"}, saves.SourceYouTube, time.Now())
		_, err := client.SubmitRecord(context.Background(), "at-1", record)
		require.NoError(t, err)
		assert.Equal(t, "/summary/save", gotPath)
	})

	t.Run("credential rejection maps to unauthorized", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		record := saves.NewRecord(saves.Payload{Author: "Ann", Content: "post"}, saves.SourceLinkedIn, time.Now())
		_, err := client.SubmitRecord(context.Background(), "at-dead", record)
		assert.ErrorIs(t, err, saves.ErrUnauthorized)
	})

	t.Run("server failure stays a plain error", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		record := saves.NewRecord(saves.Payload{Author: "Ann", Content: "post"}, saves.SourceLinkedIn, time.Now())
		_, err := client.SubmitRecord(context.Background(), "at-1", record)
		require.Error(t, err)
		assert.NotErrorIs(t, err, saves.ErrUnauthorized)
	})
}

func TestClient_Summaries(t *testing.T) {
	t.Parallel()

	t.Run("generate returns the summary payload", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/summary/generate", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"s1","videoId":"vid-1","title":"Talk","keyPoints":["a","b"],"fullSummary":"..."}}`))
		}))

		summary, err := client.GenerateSummary(context.Background(), "at-1", apiclient.SummaryRequest{
			VideoID: "vid-1", Title: "Talk", Transcript: []string{"hello"},
		})
		require.NoError(t, err)
		assert.Equal(t, "vid-1", summary.VideoID)
		assert.Len(t, summary.KeyPoints, 2)
	})

	t.Run("lookup miss returns nil without error", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/summary/video/vid-404", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}))

		summary, err := client.GetSummaryByVideoID(context.Background(), "at-1", "vid-404")
		require.NoError(t, err)
		assert.Nil(t, summary)
	})

	t.Run("lookup hit returns the stored summary", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"s1","videoId":"vid-1","title":"Talk"}}`))
		}))

		summary, err := client.GetSummaryByVideoID(context.Background(), "at-1", "vid-1")
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, "s1", summary.ID)
	})
}

func TestClient_Healthy(t *testing.T) {
	t.Parallel()

	t.Run("healthy backend", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		assert.True(t, client.Healthy(context.Background()))
	})

	t.Run("failing backend", func(t *testing.T) {
		t.Parallel()
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		assert.False(t, client.Healthy(context.Background()))
	})
}
