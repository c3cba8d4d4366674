package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/tuitioncenter/apps/api/echo"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/tests"
)

func Test_profileApi_retrieve(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	math := testutil.CreateSubject(t, subjectRepo, "Matematika", 500000, &teacher.ID)
	st := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true, math.ID)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/profile")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("staff", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")

		var got staff.Staff
		unmarshal(t, rec, &got)
		assert.Equal(t, teacher.ID, got.ID)
		assert.Equal(t, "math_teacher", got.Username)
		assert.Equal(t, staff.RoleTeacher, got.Role)
		assert.Nil(t, got.ProfilePicture)
	})

	t.Run("student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile", getToken(t, st))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")

		var got student.Student
		unmarshal(t, rec, &got)
		assert.Equal(t, st.ID, got.ID)
		assert.Equal(t, "Aziza Karimova", got.FullName)
		if assert.Len(t, got.Subjects, 1) {
			assert.Equal(t, "Matematika", got.Subjects[0].Name)
		}
	})
}

func Test_profileApi_update(t *testing.T) {
	app := setup(t)

	testutil.CreateStaff(t, staffRepo, "Director", "admin", "adminpassword", staff.RoleAdmin)
	teacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	st := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "username taken", token: getToken(t, teacher), body: []byte(`{"username": "ADMIN"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "username already taken"}),
		},
		{
			name: "invalid username", token: getToken(t, teacher), body: []byte(`{"username": "math teacher"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, fieldsErr(map[string]string{"username": "only alphanumeric characters and underscores are allowed"})),
		},
		{
			name: "invalid phone", token: getToken(t, st), body: []byte(`{"phone": "90 123 45 67"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, fieldsErr(map[string]string{"phone": "phone must have the format +998 XX XXX XX XX"})),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPut
		tests[i].path = "/api/profile"
	}
	runTests(t, app, tests)

	t.Run("staff", func(t *testing.T) {
		body := []byte(`{"fullName": " Alisher Valiyev Jr ", "username": "Alisher"}`)
		req, rec := newAuthRequest(http.MethodPut, "/api/profile", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got staff.Staff
		unmarshal(t, rec, &got)
		assert.Equal(t, "Alisher Valiyev Jr", got.FullName)
		assert.Equal(t, "alisher", got.Username)
		assert.Equal(t, staff.RoleTeacher, got.Role)

		// logs in with the new username
		req, rec = newRequest(http.MethodPost, "/api/auth/login", marchallObj(t, LoginRequest{Username: "alisher", Password: "password"}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("student", func(t *testing.T) {
		body := []byte(`{"fullName": "Aziza K.", "phone": "+998 93 000 11 22"}`)
		req, rec := newAuthRequest(http.MethodPut, "/api/profile", getToken(t, st), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got student.Student
		unmarshal(t, rec, &got)
		assert.Equal(t, "Aziza K.", got.FullName)
		if assert.NotNil(t, got.Phone) {
			assert.Equal(t, "+998 93 000 11 22", *got.Phone)
		}
		// credentials stay those derived at registration
		if assert.NotNil(t, got.Username) {
			assert.Equal(t, "student_4567", *got.Username)
		}
	})

	t.Run("empty body keeps everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/profile", getToken(t, st), []byte(`{}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got student.Student
		unmarshal(t, rec, &got)
		assert.Equal(t, "Aziza K.", got.FullName)
		if assert.NotNil(t, got.Phone) {
			assert.Equal(t, "+998 93 000 11 22", *got.Phone)
		}
	})
}

func Test_profileApi_changePassword(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	st := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true)
	teacherToken := getToken(t, teacher)

	change := func(current, next string) []byte {
		return marchallObj(t, map[string]string{"oldPassword": current, "newPassword": next})
	}
	pwdErr := func(msg string) []byte {
		return marchallObj(t, fieldsErr(map[string]string{"newPassword": msg}))
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: teacherToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, fieldsErr(map[string]string{"oldPassword": "this field is required", "newPassword": "this field is required"})),
		},
		{name: "too short", token: teacherToken, body: change("password", "abc"), wantCode: http.StatusBadRequest, wantData: pwdErr("password must contain at least 6 characters")},
		{name: "whitespace", token: teacherToken, body: change("password", "new password"), wantCode: http.StatusBadRequest, wantData: pwdErr("password must not contain whitespace")},
		{name: "similar to username", token: teacherToken, body: change("password", "Math_Teacher1"), wantCode: http.StatusBadRequest, wantData: pwdErr("password cannot be similar to the username")},
		{
			name: "wrong current password", token: teacherToken, body: change("wrong", "s3cure-Pass"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, fieldsErr(map[string]string{"oldPassword": "current password is incorrect"})),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPut
		tests[i].path = "/api/profile/password"
	}
	runTests(t, app, tests)

	success := []struct {
		name           string
		token          string
		oldPwd, newPwd string
		loginURL       string
		username       string
	}{
		{name: "staff", token: teacherToken, oldPwd: "password", newPwd: "s3cure-Pass", loginURL: "/api/auth/login", username: "math_teacher"},
		{name: "student", token: getToken(t, st), oldPwd: "234567", newPwd: "my-own-pass", loginURL: "/api/student-auth/login", username: "student_4567"},
	}
	for _, tt := range success {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/api/profile/password", tt.token, change(tt.oldPwd, tt.newPwd))
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "password updated successfully"})}, rec)

			req, rec = newRequest(http.MethodPost, tt.loginURL, marchallObj(t, LoginRequest{Username: tt.username, Password: tt.oldPwd}))
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			req, rec = newRequest(http.MethodPost, tt.loginURL, marchallObj(t, LoginRequest{Username: tt.username, Password: tt.newPwd}))
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func Test_profileApi_setPicture(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateStaff(t, staffRepo, "Alisher Valiyev", "math_teacher", "password", staff.RoleTeacher)
	st := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true)
	picture := map[string][2]string{"profilePicture": {"me.png", "fake png bytes"}}

	tests := []struct {
		name     string
		token    string
		files    map[string][2]string
		wantCode int
		wantData interface{}
	}{
		{name: "Auth required", files: picture, wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{name: "students cannot", token: getToken(t, st), files: picture, wantCode: http.StatusForbidden, wantData: errForbidden},
		{
			name: "picture required", token: getToken(t, teacher), wantCode: http.StatusBadRequest,
			wantData: fieldsErr(map[string]string{"profilePicture": "this field is required"}),
		},
		{
			name: "images only", token: getToken(t, teacher), files: map[string][2]string{"profilePicture": {"cv.pdf", "%PDF"}},
			wantCode: http.StatusBadRequest, wantData: fieldsErr(map[string]string{"profilePicture": "only jpeg, jpg, png and gif images are allowed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newMultipartRequest(t, "/api/profile/picture", tt.token, nil, tt.files)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: marchallObj(t, tt.wantData)}, rec)
		})
	}

	t.Run("staff", func(t *testing.T) {
		token := getToken(t, teacher)
		req, rec := newMultipartRequest(t, "/api/profile/picture", token, nil, picture)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got staff.Staff
		unmarshal(t, rec, &got)
		if !assert.NotNil(t, got.ProfilePicture) {
			return
		}
		assert.True(t, strings.HasPrefix(*got.ProfilePicture, "profile-pictures/"), *got.ProfilePicture)

		// served and persisted
		req, rec = newRequest(http.MethodGet, "/"+*got.ProfilePicture)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fake png bytes", rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/api/profile", token)
		app.ServeHTTP(rec, req)
		var profile staff.Staff
		unmarshal(t, rec, &profile)
		assert.Equal(t, got.ProfilePicture, profile.ProfilePicture)
	})
}

func Test_profileApi_summary(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStaff(t, staffRepo, "Director", "admin", "adminpassword", staff.RoleAdmin)
	st := testutil.CreateStudent(t, studentRepo, "Aziza Karimova", "+998 90 123 45 67", true)
	testutil.CreatePayment(t, payRepo, st.ID, 250000, payment.StatusPending)

	t.Run("student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile/summary", getToken(t, st))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var sum struct {
			Attendance    string `json:"attendance"`
			PaymentsTotal int    `json:"paymentsTotal"`
			TuitionDue    int    `json:"tuitionDue"`
		}
		unmarshal(t, rec, &sum)
		assert.Equal(t, "0/0", sum.Attendance)
		assert.Equal(t, 250000, sum.PaymentsTotal)
		assert.Equal(t, 0, sum.TuitionDue)
	})

	t.Run("staff have no summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile/summary", getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
