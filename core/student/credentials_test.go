package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCredentials(t *testing.T) {
	tests := []struct {
		name   string
		phone  string
		want   Credentials
		wantOk bool
	}{
		{name: "formatted phone", phone: "+998 90 123 45 67", want: Credentials{Username: "student_4567", Password: "234567"}, wantOk: true},
		{name: "raw digits", phone: "998901112233", want: Credentials{Username: "student_2233", Password: "112233"}, wantOk: true},
		{name: "dashes & parens", phone: "(90) 765-43-21", want: Credentials{Username: "student_4321", Password: "654321"}, wantOk: true},
		{name: "exactly 6 digits", phone: "123456", want: Credentials{Username: "student_3456", Password: "123456"}, wantOk: true},
		{name: "short phone", phone: "12-34", want: Credentials{Username: "student_1234", Password: "1234"}, wantOk: true},
		{name: "3 digits", phone: "987", want: Credentials{Username: "student_987", Password: "987"}, wantOk: true},
		{name: "no digits", phone: "+ -", wantOk: false},
		{name: "empty", phone: "", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveCredentials(tt.phone)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStudent_CheckPassword(t *testing.T) {
	creds, _ := DeriveCredentials("+998 90 123 45 67")

	var s Student
	assert.ErrorIs(t, s.CheckPassword(creds.Password), ErrNoCredentials)

	if err := s.SetPassword(creds.Password); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	assert.NoError(t, s.CheckPassword("234567"))
	assert.Error(t, s.CheckPassword("234568"))
	assert.Error(t, s.CheckPassword(""))
}

func TestStudent_Identity(t *testing.T) {
	uname := "student_4567"
	s := Student{ID: 3, FullName: "Aziza Karimova", Username: &uname}
	id := s.Identity()
	assert.Equal(t, 3, id.ID)
	assert.Equal(t, "student", string(id.Role))
	assert.Equal(t, "student_4567", id.Username)
	assert.Equal(t, "Aziza Karimova", id.FullName)

	assert.Equal(t, "", Student{ID: 4}.Identity().Username)
}
