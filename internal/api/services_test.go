package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBatches_PageAndArray(t *testing.T) {
	t.Run("spring page", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/batches", r.URL.Path)
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "20", r.URL.Query().Get("size"))
			writeJSON(w, http.StatusOK, map[string]any{
				"content":       []Batch{{ID: "b1", Name: "Java"}, {ID: "b2", Name: "Go"}},
				"totalElements": 2,
			})
		})
		batches, err := client.ListBatches(context.Background(), 2, 20)
		require.NoError(t, err)
		assert.Len(t, batches, 2)
		assert.Equal(t, "Go", batches[1].Name)
	})

	t.Run("bare array", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "10", r.URL.Query().Get("size"))
			writeJSON(w, http.StatusOK, []Batch{{ID: "b1", Name: "Java"}})
		})
		batches, err := client.ListBatches(context.Background(), -1, 0)
		require.NoError(t, err)
		assert.Equal(t, []Batch{{ID: "b1", Name: "Java"}}, batches)
	})
}

func TestDecodeList_Empty(t *testing.T) {
	for _, raw := range []string{"", "null", "{}", "[]"} {
		items, err := decodeList[Batch](json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, items, raw)
	}
}

func TestCreateBatch_Validation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	})
	_, err := client.CreateBatch(context.Background(), Batch{DurationWeeks: 4})
	assert.Error(t, err)
}

func TestAssignTrainer_Query(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/batches/assign-trainer", r.URL.Path)
		assert.Equal(t, "t1", r.URL.Query().Get("trainerId"))
		assert.Equal(t, "b1", r.URL.Query().Get("batchId"))
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, client.AssignTrainer(context.Background(), "t1", "b1"))
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/students/a%2Fb", r.URL.RawPath)
		writeJSON(w, http.StatusOK, Student{ID: "a/b", Name: "S", Email: "s@x.edu"})
	})
	s, err := client.GetStudent(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", s.ID)
}

func TestCreateStudent_RequiresPassword(t *testing.T) {
	client := New("http://127.0.0.1:1")
	_, err := client.CreateStudent(context.Background(), Student{Name: "S", Email: "s@x.edu"})
	assert.Error(t, err)
}

func TestAddTrainerFeedback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/feedback/trainer/t1", r.URL.Path)
		var body TrainerFeedbackRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 4, body.Rating)
		writeJSON(w, http.StatusOK, Feedback{ID: "f1", Content: body.Content, Rating: body.Rating})
	})

	fb, err := client.AddTrainerFeedback(context.Background(), "t1", TrainerFeedbackRequest{
		StudentID: "s1", BatchID: "b1", Content: "Solid progress", Rating: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Solid progress", fb.Text())
}

func TestFeedbackRatingBounds(t *testing.T) {
	client := New("http://127.0.0.1:1")
	for _, rating := range []int{0, 6} {
		_, err := client.AddStudentFeedback(context.Background(), "s1", StudentFeedbackRequest{
			TrainerID: "t1", BatchID: "b1", Comment: "ok", Rating: rating,
		})
		assert.Error(t, err, "rating %d", rating)
	}
}

func TestAverageRating(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/feedback/trainer/average-rating/t1":
			_, _ = w.Write([]byte("4.5"))
		case "/api/v1/feedback/student/average-rating/s1":
			_, _ = w.Write([]byte("null"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	avg, err := client.AverageTrainerRating(context.Background(), "t1")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, avg, 0.001)

	avg, err = client.AverageStudentRating(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestTopTrainers_DefaultLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []TopTrainer{{ID: "t1", Name: "Ravi", AverageRating: 4.8, FeedbackCount: 12}})
	})
	top, err := client.TopTrainers(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 12, top[0].FeedbackCount)
}

func TestFeedbackSummaryForBatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"batchId": "b1", "averageTrainerRating": 4.2, "averageStudentRating": 3.9,
			"studentFeedbackCount": 10, "trainerFeedbackCount": 7,
		})
	})
	s, err := client.FeedbackSummaryForBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, FeedbackSummary{BatchID: "b1", AverageTrainerRating: 4.2, AverageStudentRating: 3.9, StudentFeedbackCount: 10, TrainerFeedbackCount: 7}, *s)
}

func TestUpdateProgress(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/progress/trainer/t1", r.URL.Path)
		writeJSON(w, http.StatusOK, TrainingProgress{ID: "p1", Status: ProgressCompleted})
	})

	_, err := client.UpdateProgress(context.Background(), "t1", ProgressUpdate{
		StudentID: "s1", BatchID: "b1", TopicID: "x", Status: "DONE",
	})
	assert.Error(t, err)

	p, err := client.UpdateProgress(context.Background(), "t1", ProgressUpdate{
		StudentID: "s1", BatchID: "b1", TopicID: "x", Status: ProgressCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, ProgressCompleted, p.Status)
}

func TestCompaniesByDomainAndHiringProcess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/companies/by-domain":
			assert.Equal(t, "fintech", r.URL.Query().Get("domain"))
			writeJSON(w, http.StatusOK, []Company{{ID: "c1", Name: "Acme", Domain: "fintech"}})
		case "/api/v1/companies/c1/hiring-process":
			writeJSON(w, http.StatusOK, []HiringRound{{RoundNumber: 1, RoundName: "Aptitude"}, {RoundNumber: 2, RoundName: "Technical"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	companies, err := client.CompaniesByDomain(context.Background(), "fintech")
	require.NoError(t, err)
	require.Len(t, companies, 1)

	rounds, err := client.HiringProcess(context.Background(), companies[0].ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 2)

	_, err = client.CompaniesByDomain(context.Background(), "")
	assert.Error(t, err)
}
