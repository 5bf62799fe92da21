package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/shuleboard/apps/api/echo"
	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/dashboard"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/report"
	"github.com/trezcool/shuleboard/core/student"
	emailsvc "github.com/trezcool/shuleboard/services/email"
	"github.com/trezcool/shuleboard/storage/database"
	"github.com/trezcool/shuleboard/tests"
)

// today is a seeded school day
var today = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

type app struct {
	*Server
	store      *database.Store
	studentSvc *student.Service
	attSvc     *attendance.Service
	gradeSvc   *grade.Service
	reportSvc  *report.Service
	dashSvc    *dashboard.Service
	email      *emailsvc.ConsoleServiceMock
}

// setup starts a Server over a freshly seeded in-memory store.
func setup(t *testing.T) app {
	core.NowFunc = func() time.Time { return today }
	t.Cleanup(func() { core.NowFunc = time.Now })

	store := testutil.NewStore(t, true /* seed */)
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()

	studentSvc := student.NewService(store.Students)
	attSvc := attendance.NewService(store.Attendance, studentSvc, logger)
	gradeSvc := grade.NewService(store.Grades)
	conf := core.NewTestConfig()
	a := app{
		store:      store,
		studentSvc: studentSvc,
		attSvc:     attSvc,
		gradeSvc:   gradeSvc,
		reportSvc:  report.NewService(studentSvc, gradeSvc, attSvc, logger),
		dashSvc:    dashboard.NewService(studentSvc, gradeSvc, attSvc),
		email:      emailsvc.NewConsoleServiceMock(conf, logger),
	}
	a.Server = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		StudentSvc:    a.studentSvc,
		AttendanceSvc: a.attSvc,
		GradeSvc:      a.gradeSvc,
		ReportSvc:     a.reportSvc,
		ReportMailer:  report.NewMailer(a.reportSvc, a.email),
		DashboardSvc:  a.dashSvc,
		Validate:      validate,
		Translator:    translator,
	})
	return a
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

// jsonBytesEqual compares two JSON documents. Lists are compared regardless of their order.
func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if !ok1 || !ok2 {
		return false, nil
	}
	return assert.ElementsMatch(t, l1, l2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, a app, tests []httpTest) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
