package tests

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/shuleboard/apps/api/echo"
	"github.com/trezcool/shuleboard/core/report"
)

func TestReportAPI(t *testing.T) {
	a := setup(t)

	tests := []httpTest{
		{name: "idle", path: "/v1/reports/state", wantData: marchallObj(t, StateResponse{State: report.StateIdle})},
		{name: "no last report", path: "/v1/reports/last", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{"no report has been generated"})},
		{name: "nothing to export", path: "/v1/reports/last/export", wantCode: http.StatusNotFound},
		{name: "empty history", path: "/v1/reports/history", wantData: marchallList(t)},
		{
			name:     "missing selector",
			method:   http.MethodPost,
			path:     "/v1/reports",
			body:     []byte(`{"type": "student"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "this field is required"}),
		},
		{
			name:     "unknown type",
			method:   http.MethodPost,
			path:     "/v1/reports",
			body:     []byte(`{"type": "weekly"}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "still idle", path: "/v1/reports/state", wantData: marchallObj(t, StateResponse{State: report.StateIdle})},
		{
			name:     "unknown student",
			method:   http.MethodPost,
			path:     "/v1/reports",
			body:     []byte(`{"type": "student", "student_id": 999}`),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{"student not found"}),
		},
		{
			name:     "failed",
			path:     "/v1/reports/state",
			wantData: marchallObj(t, StateResponse{State: report.StateFailed, Error: "finding student by ID: student not found"}),
		},
		{name: "reset", method: http.MethodPost, path: "/v1/reports/reset", wantData: marchallObj(t, StateResponse{State: report.StateIdle})},
	}
	runHTTPTests(t, a, tests)
}

func TestReportAPI_generate(t *testing.T) {
	a := setup(t)

	generate := func(t *testing.T, body string) report.Report {
		req, rec := newRequest(http.MethodPost, "/v1/reports", []byte(body))
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var r report.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
		return r
	}

	student := generate(t, `{"type": "student", "student_id": 1}`)
	assert.Equal(t, "Student Report - Emma Johnson", student.Title)
	assert.NotEmpty(t, student.ID)

	class := generate(t, `{"type": "Class", "grade_level": "10"}`)
	assert.Equal(t, report.TypeClass, class.Type)
	assert.Equal(t, "Class Report - Grade 10", class.Title)
	assert.Len(t, class.Students, 3)

	tests := []httpTest{
		{name: "ready", path: "/v1/reports/state", wantData: marchallObj(t, StateResponse{State: report.StateReady})},
		{name: "history is newest first", path: "/v1/reports/history", wantData: marchallObj(t, []report.HistoryEntry{class.HistoryEntry(), student.HistoryEntry()})},
		{name: "unknown format", path: "/v1/reports/last/export?format=pdf", wantCode: http.StatusBadRequest},
	}
	runHTTPTests(t, a, tests)

	t.Run("last", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/reports/last")
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var last report.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &last))
		assert.Equal(t, class.ID, last.ID)
	})

	t.Run("export csv", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/reports/last/export?format=CSV")
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, `attachment; filename="class-report-20250115-093000.csv"`, rec.Header().Get(echo.HeaderContentDisposition))

		r := csv.NewReader(rec.Body)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Title", "Class Report - Grade 10"}, rows[0])
	})

	t.Run("export json by default", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/reports/last/export")
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get(echo.HeaderContentType))
	})

	// a failure keeps the last report
	req, rec := newRequest(http.MethodPost, "/v1/reports", []byte(`{"type": "student", "student_id": 999}`))
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, report.StateFailed, a.reportSvc.State())

	last, err := a.reportSvc.Last()
	require.NoError(t, err)
	assert.Equal(t, class.ID, last.ID)
}

func TestReportAPI_email(t *testing.T) {
	a := setup(t)

	tests := []httpTest{
		{name: "nothing to send", body: []byte(`{"to": ["head@school.test"]}`), wantCode: http.StatusNotFound},
		{name: "no recipients", body: []byte(`{"to": []}`), wantCode: http.StatusBadRequest},
		{name: "bad format", body: []byte(`{"to": ["head@school.test"], "format": "pdf"}`), wantCode: http.StatusBadRequest},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/reports/last/email"
	}
	runHTTPTests(t, a, tests)

	req, rec := newRequest(http.MethodPost, "/v1/reports", []byte(`{"type": "subject", "subject": "Art"}`))
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tt := httpTest{
		method:   http.MethodPost,
		path:     "/v1/reports/last/email",
		body:     []byte(`{"to": ["head@school.test", "deputy@school.test"], "format": "csv"}`),
		wantCode: http.StatusAccepted,
		wantData: marchallObj(t, SendResponse{To: []string{"head@school.test", "deputy@school.test"}}),
	}
	req, rec = newRequest(tt.method, tt.path, tt.body)
	a.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	sent := a.email.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "Subject Report - Art", sent[0].Subject)
		if assert.Len(t, sent[0].Attachments, 1) {
			assert.Equal(t, "subject-report-20250115-093000.csv", sent[0].Attachments[0].Filename)
		}
	}
}
