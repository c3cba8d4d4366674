package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/tuitioncenter/apps/api/echo"
	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
	"github.com/trezcool/tuitioncenter/core/tuition"
	"github.com/trezcool/tuitioncenter/services/email"
	"github.com/trezcool/tuitioncenter/services/logger"
	"github.com/trezcool/tuitioncenter/services/ratelimit"
	"github.com/trezcool/tuitioncenter/storage/database/inmem"
	"github.com/trezcool/tuitioncenter/storage/uploads"
)

const loginAttempts = 10

var (
	conf        *core.Config
	staffRepo   staff.Repository
	subjectRepo subject.Repository
	studentRepo student.Repository
	attRepo     attendance.Repository
	payRepo     payment.Repository

	errMissingToken = httpErr{Error: "user not authenticated"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func testConfig(t *testing.T) *core.Config {
	dir := t.TempDir()
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "TutorCenter",
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "TutorCenter", Address: "noreply@test.uz"},
		NotifyEmail:      "director@test.uz",
		Server:           core.ServerConfig{JWTExpirationDelta: 24 * time.Hour},
		RateLimit:        core.RateLimitConfig{LoginAttempts: loginAttempts, Window: time.Minute},
		Uploads: core.UploadsConfig{
			Dir:         filepath.Join(dir, "uploads"),
			PicturesDir: filepath.Join(dir, "profile-pictures"),
			MaxSize:     5 << 20,
		},
	}
}

func setup(t *testing.T) *Server {
	conf = testConfig(t)

	// set up DB & repos
	db := inmemdb.Open()
	staffRepo = inmemdb.NewStaffRepository(db)
	subjectRepo = inmemdb.NewSubjectRepository(db)
	studentRepo = inmemdb.NewStudentRepository(db)
	attRepo = inmemdb.NewAttendanceRepository(db)
	payRepo = inmemdb.NewPaymentRepository(db)

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "API : ", 0), conf)
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	store, err := uploads.NewDiskStore(conf.Uploads)
	if err != nil {
		t.Fatalf("uploads.NewDiskStore() failed: %v", err)
	}

	staffSvc := staff.NewService(staffRepo)
	subjectSvc := subject.NewService(subjectRepo, staffRepo)
	studentSvc := student.NewService(studentRepo, subjectSvc)
	attSvc := attendance.NewService(attRepo, studentRepo, subjectRepo)
	paySvc := payment.NewService(payRepo, studentRepo, store, mailSvc, conf.NotifyEmail)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	// set up server
	return NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		Validate:       validate,
		Translator:     translator,
		Limiter:        ratelimit.NewInMemory(conf.RateLimit.Window),
		Uploads:        store,
		StaffSvc:       staffSvc,
		SubjectSvc:     subjectSvc,
		StudentSvc:     studentSvc,
		AttendanceSvc:  attSvc,
		PaymentSvc:     paySvc,
		TuitionSvc:     tuition.NewService(studentSvc, attSvc, paySvc),
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpFieldsErr struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func fieldsErr(fields map[string]string) httpFieldsErr {
	return httpFieldsErr{Error: "validation failed", Fields: fields}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest builds a multipart/form-data request; files maps field -> {filename, content}.
func newMultipartRequest(
	t *testing.T,
	path, token string,
	fields map[string]string,
	files map[string][2]string,
) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() failed: %v", err)
		}
	}
	for field, file := range files {
		fw, err := w.CreateFormFile(field, file[0])
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = fw.Write([]byte(file[1])); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Close() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, p access.Principal) string {
	token, err := GenerateToken(GetClaims(p, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
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

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
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

func runTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func ids(t *testing.T, rec *httptest.ResponseRecorder) []int {
	var objs []struct {
		ID int `json:"id"`
	}
	unmarshal(t, rec, &objs)
	res := make([]int, 0, len(objs))
	for _, o := range objs {
		res = append(res, o.ID)
	}
	return res
}

func assertIDs(t *testing.T, rec *httptest.ResponseRecorder, want ...int) {
	if want == nil {
		want = []int{}
	}
	assert.Equal(t, want, ids(t, rec))
}
