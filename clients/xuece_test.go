package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newXueceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/usercenter/nnauth/user/login", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != "teacher" {
			json.NewEncoder(w).Encode(map[string]interface{}{"code": "FAIL", "msg": "bad user"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "SUCCESS",
			"data": map[string]interface{}{"authtoken": "tok", "user": map[string]interface{}{"schoolId": 12}},
		})
	})
	mux.HandleFunc("/api/examcenter/teacher/answercard/editinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("Authtoken"))
		assert.Equal(t, "12", r.Header.Get("Xc-App-User-Schoolid"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "SUCCESS",
			"data": map[string]interface{}{
				"cutparamJsonstr2": "{}",
				"examPaperName":    "paper " + r.URL.Query().Get("exampaperId"),
				"pdfUrl":           "https://cdn/p.pdf",
			},
		})
	})
	mux.HandleFunc("/api/classworkcenter/nnauth/claswork/answercardpreview", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": "ERROR", "msg": "no such classwork"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnswerCardExam(t *testing.T) {
	srv := newXueceServer(t)
	c := NewXueceClient(map[string]string{"test1": srv.URL}, "teacher", "pwd")

	card, err := c.AnswerCard(context.Background(), "test1", CardTypeExam, "5")
	require.NoError(t, err)
	assert.Equal(t, &AnswerCard{Params: "{}", Name: "paper 5", PDFURL: "https://cdn/p.pdf"}, card)
}

func TestAnswerCardFailures(t *testing.T) {
	srv := newXueceServer(t)
	ctx := context.Background()

	c := NewXueceClient(map[string]string{"test1": srv.URL}, "teacher", "pwd")
	_, err := c.AnswerCard(ctx, "test1", CardTypeClasswork, "5")
	assert.EqualError(t, err, "no such classwork")

	_, err = c.AnswerCard(ctx, "staging", CardTypeExam, "5")
	assert.Error(t, err)
	_, err = c.AnswerCard(ctx, "test1", "quiz", "5")
	assert.EqualError(t, err, "no such classwork")

	_, err = NewXueceClient(map[string]string{"test1": srv.URL}, "nobody", "pwd").AnswerCard(ctx, "test1", CardTypeExam, "5")
	assert.Error(t, err)
}
