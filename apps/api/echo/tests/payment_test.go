package tests

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/services/email"
	"github.com/trezcool/tuitioncenter/tests"
)

func Test_paymentApi_upload(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	aziza := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true)
	bobur := testutil.CreateStudent(t, studentRepo, "Bobur Toshev", "+998 91 765 43 21", true)

	receipt := map[string][2]string{"receipt": {"my receipt.jpg", "fake jpeg bytes"}}
	form := func(studentID, amount int) map[string]string {
		return map[string]string{"studentId": strconv.Itoa(studentID), "amount": strconv.Itoa(amount)}
	}

	tests := []struct {
		name     string
		token    string
		fields   map[string]string
		files    map[string][2]string
		wantCode int
		wantData interface{}
	}{
		{
			name: "required fields", files: receipt, wantCode: http.StatusBadRequest,
			wantData: fieldsErr(map[string]string{"studentId": "this field is required", "amount": "this field is required"}),
		},
		{
			name: "amount must be positive", fields: form(aziza.ID, -5), files: receipt, wantCode: http.StatusBadRequest,
			wantData: fieldsErr(map[string]string{"amount": "amount must be greater than 0"}),
		},
		{
			name: "unknown student", fields: form(999, 500000), files: receipt, wantCode: http.StatusBadRequest,
			wantData: fieldsErr(map[string]string{"studentId": "unknown student"}),
		},
		{
			name: "teachers cannot upload", token: getToken(t, teacher), fields: form(aziza.ID, 500000), files: receipt,
			wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "students upload their own receipts only", token: getToken(t, bobur), fields: form(aziza.ID, 500000), files: receipt,
			wantCode: http.StatusForbidden, wantData: errForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newMultipartRequest(t, "/api/payments/upload", tt.token, tt.fields, tt.files)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: marchallObj(t, tt.wantData)}, rec)
		})
	}
	assert.Empty(t, emailsvc.LastSentMessages())

	t.Run("anonymous upload", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/api/payments/upload", "", form(aziza.ID, 500000), receipt)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var got payment.Payment
		unmarshal(t, rec, &got)
		assert.Equal(t, aziza.ID, got.StudentID)
		assert.Equal(t, 500000, got.Amount)
		assert.Equal(t, payment.StatusPending, got.Status)
		if !assert.NotNil(t, got.ReceiptImage) {
			return
		}
		stored := *got.ReceiptImage
		assert.True(t, strings.HasPrefix(stored, "uploads/"), stored)
		assert.True(t, strings.HasSuffix(stored, "-my_receipt.jpg"), stored)

		content, err := os.ReadFile(filepath.Join(conf.Uploads.Dir, strings.TrimPrefix(stored, "uploads/")))
		if assert.NoError(t, err) {
			assert.Equal(t, "fake jpeg bytes", string(content))
		}

		// served as a static file
		req, rec = newRequest(http.MethodGet, "/"+stored)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fake jpeg bytes", rec.Body.String())

		// staff notified
		sent := emailsvc.LastSentMessages()
		if assert.Len(t, sent, 1) {
			assert.Equal(t, conf.NotifyEmail, sent[0].To[0].Address)
			assert.Contains(t, sent[0].TextContent, "Aziza Karimova")
			assert.Contains(t, sent[0].TextContent, stored)
		}
	})

	t.Run("student uploads own receipt", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/api/payments/upload", getToken(t, bobur), form(bobur.ID, 600000), receipt)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("without a receipt file", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newMultipartRequest(t, "/api/payments/upload", "", form(aziza.ID, 250000), nil)
		app.ServeHTTP(rec, req)
		if !assert.Equal(t, http.StatusCreated, rec.Code) {
			return
		}
		assert.Contains(t, rec.Body.String(), `"receiptImage":null`)

		var got payment.Payment
		unmarshal(t, rec, &got)
		assert.Equal(t, aziza.ID, got.StudentID)
		assert.Equal(t, 250000, got.Amount)
		assert.Equal(t, payment.StatusPending, got.Status)
		assert.Nil(t, got.ReceiptImage)

		sent := emailsvc.LastSentMessages()
		if assert.Len(t, sent, 1) {
			assert.Contains(t, sent[0].TextContent, "Receipt: none")
		}
	})
}

func Test_paymentApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStaff(t, staffRepo, "Director", "admin", "adminpassword", staff.RoleAdmin)
	mathTeacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	idle := testutil.CreateStaff(t, staffRepo, "Idle Teacher", "idle_teacher", "password", staff.RoleTeacher)
	math := testutil.CreateSubject(t, subjectRepo, "Matematika", 500000, &mathTeacher.ID)

	aziza := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true, math.ID)
	bobur := testutil.CreateStudent(t, studentRepo, "Bobur Toshev", "+998 91 765 43 21", true)

	now := time.Now()
	p1 := testutil.CreatePayment(t, payRepo, aziza.ID, 500000, payment.StatusApproved, now.Add(-48*time.Hour))
	p2 := testutil.CreatePayment(t, payRepo, bobur.ID, 600000, payment.StatusPending, now.Add(-24*time.Hour))
	p3 := testutil.CreatePayment(t, payRepo, aziza.ID, 125000, payment.StatusPending, now)

	tests := []struct {
		name  string
		token string
		want  []int
	}{
		{name: "admin sees all, newest first", token: getToken(t, admin), want: []int{p3.ID, p2.ID, p1.ID}},
		{name: "teacher sees students enrolled in own subjects", token: getToken(t, mathTeacher), want: []int{p3.ID, p1.ID}},
		{name: "teacher without subjects", token: getToken(t, idle), want: nil},
		{name: "student sees own", token: getToken(t, bobur), want: []int{p2.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/payments", tt.token)
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assertIDs(t, rec, tt.want...)
		})
	}

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/payments")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("payments include their student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/payments", getToken(t, bobur))
		app.ServeHTTP(rec, req)
		var payments []payment.Payment
		unmarshal(t, rec, &payments)
		if assert.Len(t, payments, 1) && assert.NotNil(t, payments[0].Student) {
			assert.Equal(t, "Bobur Toshev", payments[0].Student.FullName)
		}
		assert.NotContains(t, rec.Body.String(), "passwordHash")
	})
}

func Test_paymentApi_review(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStaff(t, staffRepo, "Director", "admin", "adminpassword", staff.RoleAdmin)
	teacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	st := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true)
	pending := testutil.CreatePayment(t, payRepo, st.ID, 500000, payment.StatusPending)
	toReject := testutil.CreatePayment(t, payRepo, st.ID, 100000, payment.StatusPending)

	adminToken := getToken(t, admin)
	path := func(id int) string { return "/api/payments/" + strconv.Itoa(id) + "/status" }

	tests := []httpTest{
		{name: "Auth required", path: path(pending.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: path(pending.ID), token: getToken(t, teacher), body: []byte(`{"status": "approved"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "invalid status", path: path(pending.ID), token: adminToken, body: []byte(`{"status": "pending"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, fieldsErr(map[string]string{"status": "status must be one of [approved rejected]"})),
		},
		{
			name: "unknown payment", path: path(999), token: adminToken, body: []byte(`{"status": "approved"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "payment not found"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPut
	}
	runTests(t, app, tests)

	review := func(t *testing.T, id int, status string) (int, payment.Payment) {
		req, rec := newAuthRequest(http.MethodPut, path(id), adminToken, []byte(`{"status": "`+status+`"}`))
		app.ServeHTTP(rec, req)
		var p payment.Payment
		if rec.Code == http.StatusOK {
			unmarshal(t, rec, &p)
		}
		return rec.Code, p
	}

	t.Run("pending -> approved", func(t *testing.T) {
		code, p := review(t, pending.ID, "Approved")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, payment.StatusApproved, p.Status)
	})
	t.Run("approved is final", func(t *testing.T) {
		code, _ := review(t, pending.ID, "rejected")
		assert.Equal(t, http.StatusConflict, code)
	})
	t.Run("pending -> rejected, then final", func(t *testing.T) {
		code, p := review(t, toReject.ID, "rejected")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, payment.StatusRejected, p.Status)

		code, _ = review(t, toReject.ID, "approved")
		assert.Equal(t, http.StatusConflict, code)
	})
}
